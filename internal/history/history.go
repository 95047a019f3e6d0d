// Package history fetches and caches the ordered scan log for a device.
//
// The cache is read-through: the server is the source of truth, every Load
// or Refresh performs a fresh fetch, and nothing is mutated client-side.
// "no history" and "history failed to load" stay distinct signals; a failed
// fetch must never silently render as an empty list.
package history

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/weperform/feiken-authenticate/internal/api"
)

// ErrNotLoaded is returned by Refresh before any Load has recorded a device
// id.
var ErrNotLoaded = errors.New("history not loaded yet")

// RecentLimit is the home-screen prefix size.
const RecentLimit = 5

// Fetcher is the history endpoint of the verification service. *api.Client
// satisfies it.
type Fetcher interface {
	ScanHistory(ctx context.Context, deviceID string) ([]api.ScanLogEntry, error)
}

// View is the per-device scan history cache. One instance backs both the
// full-history screen and the recent-scans prefix.
type View struct {
	fetcher Fetcher

	mu       sync.Mutex
	deviceID string
	entries  []api.ScanLogEntry
	loaded   bool
	lastErr  error
}

// NewView returns an empty view over the given fetcher.
func NewView(fetcher Fetcher) *View {
	return &View{fetcher: fetcher}
}

// Load fetches the full log set for deviceID and replaces the cached view.
//
// On failure the cache is cleared, the error is recorded, and the error is
// returned; the caller retries via pull-to-refresh. On success the entries
// are sorted by scanned-at descending, the display convention.
func (v *View) Load(ctx context.Context, deviceID string) ([]api.ScanLogEntry, error) {
	v.mu.Lock()
	v.deviceID = deviceID
	v.mu.Unlock()

	entries, err := v.fetcher.ScanHistory(ctx, deviceID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.entries = nil
		v.loaded = false
		v.lastErr = err
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ScannedAt.After(entries[j].ScannedAt)
	})

	v.entries = entries
	v.loaded = true
	v.lastErr = nil
	return v.snapshotLocked(), nil
}

// Refresh re-fetches using the device id of the previous Load.
func (v *View) Refresh(ctx context.Context) ([]api.ScanLogEntry, error) {
	v.mu.Lock()
	deviceID := v.deviceID
	v.mu.Unlock()

	if deviceID == "" {
		return nil, ErrNotLoaded
	}
	return v.Load(ctx, deviceID)
}

// Entries returns the cached full ordering. Empty with Loaded()==true means
// the device genuinely has no scans.
func (v *View) Entries() []api.ScanLogEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Recent returns at most n newest entries, the home-screen prefix.
func (v *View) Recent(n int) []api.ScanLogEntry {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.snapshotLocked()
	if len(s) > n {
		s = s[:n]
	}
	return s
}

// Loaded reports whether the cache holds a successful fetch.
func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// LastErr returns the failure of the most recent fetch, nil after success.
func (v *View) LastErr() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

func (v *View) snapshotLocked() []api.ScanLogEntry {
	out := make([]api.ScanLogEntry, len(v.entries))
	copy(out, v.entries)
	return out
}
