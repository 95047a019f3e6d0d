// Package verifyd is a reference implementation of the product verification
// service: the remote collaborator the client talks to, made runnable for
// local development and end-to-end tests.
//
// It implements the observable wire contract only. The authenticity decision
// is whatever status a code was seeded with; there is no detection algorithm
// here.
package verifyd

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/weperform/feiken-authenticate/internal/api"
)

//go:embed schema.sql
var schemaSQL string

// ErrCodeNotFound marks a verify attempt for a code that was never issued.
var ErrCodeNotFound = errors.New("code not found")

// Store is the sqlite-backed product and scan-log database.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens the database at path and applies the schema.
// WAL mode keeps history reads available while verifies write.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Single writer avoids SQLITE_BUSY on concurrent verifies.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeededCode describes one issued QR code and its product.
type SeededCode struct {
	Code               string
	QRCodeID           string
	ProductID          string
	BatchNumber        string
	VerificationStatus int
}

// Seed inserts (or replaces) a product and its QR code.
func (s *Store) Seed(ctx context.Context, c SeededCode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (product_id, batch_number) VALUES (?, ?)
		 ON CONFLICT (product_id) DO UPDATE SET batch_number = excluded.batch_number`,
		c.ProductID, c.BatchNumber); err != nil {
		return fmt.Errorf("seed product: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO qr_codes (qr_code_id, code, product_id, verification_status)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (qr_code_id) DO UPDATE SET
		   code = excluded.code,
		   product_id = excluded.product_id,
		   verification_status = excluded.verification_status`,
		c.QRCodeID, c.Code, c.ProductID, c.VerificationStatus); err != nil {
		return fmt.Errorf("seed qr code: %w", err)
	}
	return tx.Commit()
}

// VerifyResult is the stored answer to one verify call.
type VerifyResult struct {
	Product   api.Product
	QRCode    api.QRCode
	ScanCount int
}

// Verify records a scan of code by deviceID and returns the stored product
// record with its status and the device's updated scan count.
//
// The scan-log write and counter increment happen atomically with the
// lookup; this call is deliberately non-idempotent, which is why the client
// gates duplicate calls.
func (s *Store) Verify(ctx context.Context, code, deviceID string, now time.Time) (*VerifyResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var res VerifyResult
	err = tx.QueryRowContext(ctx,
		`SELECT q.qr_code_id, q.verification_status, p.product_id, p.batch_number
		 FROM qr_codes q JOIN products p ON p.product_id = q.product_id
		 WHERE q.code = ?`, code).
		Scan(&res.QRCode.QRCodeID, &res.QRCode.VerificationStatus,
			&res.Product.ProductID, &res.Product.BatchNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up code: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO scan_logs (qr_code_id, device_id, scanned_at, scan_count)
		 VALUES (?, ?, ?, 1)
		 ON CONFLICT (qr_code_id, device_id)
		 DO UPDATE SET scan_count = scan_count + 1, scanned_at = excluded.scanned_at
		 RETURNING scan_count`,
		res.QRCode.QRCodeID, deviceID, now.UTC()).
		Scan(&res.ScanCount)
	if err != nil {
		return nil, fmt.Errorf("record scan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &res, nil
}

// ScanHistory returns all scan logs for a device, newest first.
func (s *Store) ScanHistory(ctx context.Context, deviceID string) ([]api.ScanLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.qr_code_id, l.device_id, l.scanned_at, l.scan_count, p.batch_number, p.product_id
		 FROM scan_logs l
		 JOIN qr_codes q ON q.qr_code_id = l.qr_code_id
		 JOIN products p ON p.product_id = q.product_id
		 WHERE l.device_id = ?
		 ORDER BY l.scanned_at DESC`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("query scan history: %w", err)
	}
	defer rows.Close()

	logs := []api.ScanLogEntry{}
	for rows.Next() {
		var e api.ScanLogEntry
		if err := rows.Scan(&e.QRCodeID, &e.DeviceID, &e.ScannedAt, &e.ScanCount,
			&e.BatchNumber, &e.ProductID); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}
