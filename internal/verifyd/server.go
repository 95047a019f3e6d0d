package verifyd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/weperform/feiken-authenticate/internal/api"
	"github.com/weperform/feiken-authenticate/internal/classify"
)

// DemoCode is the QR payload printed on demo material; Seed-ing it makes a
// fresh install verifiable out of the box.
const DemoCode = "FEIKEN_DEMO_QR_123456"

// Server serves the verification API over a Store.
type Server struct {
	store *Store
	log   *slog.Logger
	now   func() time.Time
}

// NewServer returns a server over store. A nil logger falls back to
// slog.Default.
func NewServer(store *Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, log: log, now: time.Now}
}

// Router returns the HTTP routes of the verification service.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/api/products/verify/{code}", s.handleVerify).Methods("PUT")
	r.HandleFunc("/api/products/scan-history/{deviceId}", s.handleScanHistory).Methods("GET")
	return r
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var body struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, api.VerifyResponse{
			Success: false, Message: "missing device_id",
		})
		return
	}

	res, err := s.store.Verify(r.Context(), code, body.DeviceID, s.now())
	if errors.Is(err, ErrCodeNotFound) {
		s.log.Info("verify rejected", "code", code, "device", body.DeviceID)
		writeJSON(w, http.StatusOK, api.VerifyResponse{Success: false, Message: "not found"})
		return
	}
	if err != nil {
		s.log.Error("verify failed", "code", code, "error", err)
		writeJSON(w, http.StatusInternalServerError, api.VerifyResponse{
			Success: false, Message: "internal error",
		})
		return
	}

	s.log.Info("verify recorded",
		"code", code,
		"device", body.DeviceID,
		"status", res.QRCode.VerificationStatus,
		"scan_count", res.ScanCount)
	writeJSON(w, http.StatusOK, api.VerifyResponse{
		Success: true,
		Product: &res.Product,
		QRCode:  &res.QRCode,
		ScanLog: &api.ScanLogSummary{ScanCount: res.ScanCount},
	})
}

func (s *Server) handleScanHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]

	logs, err := s.store.ScanHistory(r.Context(), deviceID)
	if err != nil {
		s.log.Error("scan history failed", "device", deviceID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, api.HistoryResponse{Logs: logs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// SeedDemo inserts the demo product with an authentic status.
func SeedDemo(store *Store) error {
	return store.Seed(context.Background(), SeededCode{
		Code:               DemoCode,
		QRCodeID:           "QR-" + uuid.NewString(),
		ProductID:          "P-" + uuid.NewString(),
		BatchNumber:        "B-2025-001",
		VerificationStatus: classify.StatusAuthentic,
	})
}
