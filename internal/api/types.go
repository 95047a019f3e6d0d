package api

import "time"

// Wire types for the product verification service. Field names follow the
// server's JSON contract exactly; see the route definitions in
// internal/verifyd for the serving side.

// Product is the product record nested in a verify response.
type Product struct {
	ProductID   string `json:"product_id"`
	BatchNumber string `json:"batch_number"`
}

// QRCode carries the code identity and its verification status.
type QRCode struct {
	QRCodeID           string `json:"qr_code_id"`
	VerificationStatus int    `json:"verification_status"`
}

// ScanLogSummary carries the per-device scan count reported with a verify.
type ScanLogSummary struct {
	ScanCount int `json:"scan_count"`
}

// VerifyResponse is the body of PUT /api/products/verify/{code}.
type VerifyResponse struct {
	Success bool            `json:"success"`
	Product *Product        `json:"product,omitempty"`
	QRCode  *QRCode         `json:"qrCode,omitempty"`
	ScanLog *ScanLogSummary `json:"scan_log,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ScanLogEntry is one historical verification record as stored server-side.
// The client only ever reads these; the server is the source of truth for
// ordering and counts.
type ScanLogEntry struct {
	QRCodeID    string    `json:"qr_code_id"`
	DeviceID    string    `json:"device_id"`
	ScannedAt   time.Time `json:"scanned_at"`
	ScanCount   int       `json:"scan_count"`
	BatchNumber string    `json:"batch_number"`
	ProductID   string    `json:"product_id"`
}

// HistoryResponse is the body of GET /api/products/scan-history/{deviceId}.
type HistoryResponse struct {
	Logs []ScanLogEntry `json:"logs"`
}

type verifyRequest struct {
	DeviceID string `json:"device_id"`
}
