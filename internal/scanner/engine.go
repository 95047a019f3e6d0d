// Package scanner binds the scan gate, device identity, verification
// session, and history view into the engine behind a scan screen.
//
// One Engine serves one active scan surface. Each admitted scan produces
// exactly one terminal result, success or failure, and the gate releases on
// both paths so a bad scan never locks the user out.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/weperform/feiken-authenticate/internal/api"
	"github.com/weperform/feiken-authenticate/internal/gate"
	"github.com/weperform/feiken-authenticate/internal/history"
	"github.com/weperform/feiken-authenticate/internal/identity"
	"github.com/weperform/feiken-authenticate/internal/session"
)

// ErrScanInFlight is returned when a scan event arrives while a previous
// attempt is in flight or cooling down. The event is dropped, not queued.
var ErrScanInFlight = errors.New("scan already in flight or cooling down")

// Engine drives the scan-verification flow.
type Engine struct {
	client   *api.Client
	identity *identity.Provider
	gate     *gate.Gate
	history  *history.View

	cooldown time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCooldown overrides the post-attempt gate cooldown.
func WithCooldown(d time.Duration) Option {
	return func(e *Engine) { e.cooldown = d }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New returns an engine over the given service client and identity provider.
func New(client *api.Client, provider *identity.Provider, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		identity: provider,
		gate:     gate.New(),
		history:  history.NewView(client),
		cooldown: gate.DefaultCooldown,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan runs one complete attempt for a decoded QR payload: admit, resolve
// the device id, verify, classify, release.
//
// Duplicate detections while locked return ErrScanInFlight without touching
// the network. Any other return, outcome or error, is the attempt's single
// terminal result, and the gate begins its cooldown regardless.
func (e *Engine) Scan(ctx context.Context, code string) (*session.Outcome, error) {
	if !e.gate.TryAdmit(e.now()) {
		return nil, ErrScanInFlight
	}
	defer func() {
		e.gate.Release(e.now(), e.cooldown)
	}()

	deviceID, err := e.identity.Get(ctx)
	if err != nil {
		var se *identity.StorageError
		if !errors.As(err, &se) {
			return nil, err
		}
		// Recoverable: proceed with the ephemeral id for this attempt.
		e.log.Warn("device id storage failed, using ephemeral id", "error", se)
	}

	sess := session.New(e.client)
	e.log.Debug("verifying scan", "session", sess.ID(), "device", deviceID)

	out, err := sess.Verify(ctx, session.ScanRequest{Code: code, DeviceID: deviceID})
	if err != nil {
		e.log.Info("verification failed", "session", sess.ID(), "error", err)
		return nil, err
	}

	e.log.Info("verification complete",
		"session", sess.ID(),
		"kind", out.Kind.String(),
		"product", out.ProductID,
		"scan_count", out.ScanCount)
	return out, nil
}

// AdmitScan exposes the gate's admit transition for callers that drive the
// camera feed themselves.
func (e *Engine) AdmitScan() bool {
	return e.gate.TryAdmit(e.now())
}

// ReleaseScan schedules the gate's return to Idle after the cooldown.
func (e *Engine) ReleaseScan() {
	e.gate.Release(e.now(), e.cooldown)
}

// LoadHistory fetches the device's scan history into the cached view.
func (e *Engine) LoadHistory(ctx context.Context) ([]api.ScanLogEntry, error) {
	deviceID, err := e.identity.Get(ctx)
	if err != nil {
		var se *identity.StorageError
		if !errors.As(err, &se) {
			return nil, err
		}
		e.log.Warn("device id storage failed, using ephemeral id", "error", se)
	}
	return e.history.Load(ctx, deviceID)
}

// RefreshHistory re-fetches with the previously loaded device id.
func (e *Engine) RefreshHistory(ctx context.Context) ([]api.ScanLogEntry, error) {
	entries, err := e.history.Refresh(ctx)
	if errors.Is(err, history.ErrNotLoaded) {
		return e.LoadHistory(ctx)
	}
	return entries, err
}

// History returns the cached view for direct inspection: full entries,
// recent prefix, and the empty-versus-failed distinction.
func (e *Engine) History() *history.View {
	return e.history
}
