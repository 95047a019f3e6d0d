// Package gate implements the scan admission gate.
//
// A camera feed decodes the same physical label several times per second, and
// the verify endpoint is non-idempotent server-side (every accepted call
// increments a scan counter). The gate guarantees at most one in-flight or
// cooling-down scan at a time: duplicate detections are dropped, never queued.
package gate

import (
	"sync"
	"time"
)

// DefaultCooldown is how long the gate stays locked after a scan attempt
// completes. The label typically stays in frame for several seconds after a
// successful decode, so release is a grace period, not an immediate reopen.
const DefaultCooldown = 3 * time.Second

// State of the gate.
type State uint8

const (
	Idle State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "idle"
}

// Gate is the debounce/lock state machine guarding scan admission.
// One instance belongs to one active scan screen; it is not shared across
// concurrent scan sessions.
type Gate struct {
	mu          sync.Mutex
	state       State
	lockedUntil time.Time
}

// New returns a gate in the Idle state.
func New() *Gate {
	return &Gate{}
}

// TryAdmit admits a scan attempt if the gate is Idle, transitioning it to
// Locked. It returns false without side effects while a scan is in flight or
// the cooldown from the previous attempt has not yet expired.
func (g *Gate) TryAdmit(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Locked {
		// A zero lockedUntil means the attempt is still in flight and
		// Release has not been called, so the lock has no expiry yet.
		if g.lockedUntil.IsZero() || now.Before(g.lockedUntil) {
			return false
		}
		g.state = Idle
	}

	g.state = Locked
	g.lockedUntil = time.Time{}
	return true
}

// Release schedules the return to Idle once cooldown has elapsed from now.
// Success and failure paths both go through this same transition; there is no
// error state and the caller is never left permanently locked out.
func (g *Gate) Release(now time.Time, cooldown time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Locked {
		return
	}
	g.lockedUntil = now.Add(cooldown)
}

// State reports the effective state at the given instant, folding an expired
// cooldown into Idle.
func (g *Gate) State(now time.Time) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Locked && !g.lockedUntil.IsZero() && !now.Before(g.lockedUntil) {
		g.state = Idle
	}
	return g.state
}
