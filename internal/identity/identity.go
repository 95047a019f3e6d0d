// Package identity resolves and persists the per-installation device id.
//
// The id is an opaque string used server-side to bucket scan counts. It is
// not security-sensitive. Once generated it never changes for the lifetime of
// the installation; the durable slot is cleared only by uninstall.
package identity

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
)

const syntheticIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Provider resolves the device id exactly once and memoizes it. It is safe
// for concurrent use; VerificationSession and ScanHistoryView share one
// instance instead of re-reading storage ad hoc.
type Provider struct {
	mu          sync.Mutex
	store       Store
	fingerprint func() (string, error)

	id        string
	resolved  bool
	ephemeral bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithFingerprint overrides the hardware fingerprint probe. The zero probe is
// Fingerprint; tests inject a fixed or failing one.
func WithFingerprint(fn func() (string, error)) Option {
	return func(p *Provider) { p.fingerprint = fn }
}

// NewProvider returns a provider backed by the given durable store.
func NewProvider(store Store, opts ...Option) *Provider {
	p := &Provider{store: store, fingerprint: Fingerprint}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the installation's device id.
//
// On first call it loads the persisted id; if the slot is empty it falls back
// to the hardware fingerprint, then to a synthesized random id, and persists
// the chosen value before returning. Repeated calls return the identical
// value.
//
// When the durable slot cannot be read or written, Get still returns a usable
// id together with a *StorageError: the id is ephemeral for this process and
// the caller decides whether to retry or accept it. A retry re-attempts
// persisting the same ephemeral id, so the installation keeps a single
// identity even across a transient storage failure.
func (p *Provider) Get(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved && !p.ephemeral {
		return p.id, nil
	}

	if p.resolved {
		// Previous resolution fell back to an ephemeral id. Retry
		// persisting that same id rather than minting another one.
		if err := p.store.Save(p.id); err != nil {
			return p.id, asStorageError("save", err)
		}
		p.ephemeral = false
		return p.id, nil
	}

	id, err := p.store.Load()
	switch {
	case err == nil:
		p.id, p.resolved = id, true
		return id, nil
	case errors.Is(err, ErrNotFound):
		// First run: choose an id below.
	default:
		p.id, p.resolved, p.ephemeral = p.chooseID(), true, true
		return p.id, asStorageError("load", err)
	}

	chosen := p.chooseID()
	if err := p.store.Save(chosen); err != nil {
		p.id, p.resolved, p.ephemeral = chosen, true, true
		return chosen, asStorageError("save", err)
	}
	p.id, p.resolved = chosen, true
	return chosen, nil
}

// chooseID picks the hardware fingerprint when available, otherwise a
// synthesized random id.
func (p *Provider) chooseID() string {
	if fp, err := p.fingerprint(); err == nil && fp != "" {
		return fp
	}
	return synthesizeID()
}

// synthesizeID generates "device-" plus nine random alphanumerics.
// Non-cryptographic on purpose: the id only buckets scan counts.
func synthesizeID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = syntheticIDAlphabet[rand.IntN(len(syntheticIDAlphabet))]
	}
	return "device-" + string(suffix)
}

// asStorageError wraps err in a *StorageError unless it already is one.
func asStorageError(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return se
	}
	return &StorageError{Op: op, Err: err}
}
