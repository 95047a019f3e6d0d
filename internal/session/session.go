// Package session executes a single verification attempt for one admitted
// scan: one network round trip, one classified outcome, one typed failure.
//
// It does not gate concurrency (that is the caller's job via internal/gate)
// and performs no retries. The remote verify operation durably records the
// scan as a side effect, so a session must never issue two calls for the
// same physical scan event.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/weperform/feiken-authenticate/internal/api"
	"github.com/weperform/feiken-authenticate/internal/classify"
)

// ErrUnreachable marks any transport-level failure: timeout, DNS, connection
// refused, or an unparsable response. Recoverable; the user may rescan after
// the cooldown.
var ErrUnreachable = errors.New("verification service unreachable")

// RejectedError is the server explicitly declining a verification, carrying
// its user-facing message. Terminal for this attempt.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "verification rejected"
	}
	return "verification rejected: " + e.Message
}

// ScanRequest is one raw scan event to verify. Consumed once, then discarded.
type ScanRequest struct {
	Code     string // decoded QR payload, opaque text
	DeviceID string
}

// Validate reports whether the request is well formed.
func (r ScanRequest) Validate() error {
	if r.Code == "" {
		return errors.New("empty QR payload")
	}
	if r.DeviceID == "" {
		return errors.New("empty device id")
	}
	return nil
}

// Outcome is the classified result of a successful verification round trip.
// ScanCount is 0 when the server did not report one (real counts start at 1).
type Outcome struct {
	Kind        classify.Kind
	ProductID   string
	BatchNumber string
	QRCodeID    string
	ScanCount   int

	// CorrelationID identifies the session that produced this outcome, so a
	// presentation layer that navigated away can recognize and discard a
	// stale result.
	CorrelationID string
}

// Verifier is the remote verify operation. *api.Client implements it.
type Verifier interface {
	Verify(ctx context.Context, code, deviceID string) (*api.VerifyResponse, error)
}

// Session runs exactly one verification attempt. Create a fresh one per
// admitted scan.
type Session struct {
	id       string
	verifier Verifier
	done     bool
}

// New returns a session with a fresh correlation id.
func New(v Verifier) *Session {
	return &Session{id: uuid.NewString(), verifier: v}
}

// ID returns the session's correlation id.
func (s *Session) ID() string {
	return s.id
}

// Verify performs the round trip for req and classifies the answer.
//
// Failures are typed: *RejectedError when the server declined with a
// message, ErrUnreachable (wrapped) on any transport failure. A session is
// single-use; a second call is refused before touching the network.
func (s *Session) Verify(ctx context.Context, req ScanRequest) (*Outcome, error) {
	if s.done {
		return nil, errors.New("session already used")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.done = true

	resp, err := s.verifier.Verify(ctx, req.Code, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if !resp.Success {
		return nil, &RejectedError{Message: resp.Message}
	}

	out := &Outcome{CorrelationID: s.id}
	if resp.QRCode != nil {
		out.Kind = classify.Classify(resp.QRCode.VerificationStatus)
		out.QRCodeID = resp.QRCode.QRCodeID
	}
	if resp.Product != nil {
		out.ProductID = resp.Product.ProductID
		out.BatchNumber = resp.Product.BatchNumber
	}
	if resp.ScanLog != nil {
		out.ScanCount = resp.ScanLog.ScanCount
	}
	return out, nil
}
