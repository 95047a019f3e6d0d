package identity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when no device id has been persisted yet.
var ErrNotFound = errors.New("device id not stored")

// Store is the scoped durable slot holding the installation's device id.
// The slot survives restarts and is cleared only by uninstall, which is
// outside this package's control.
type Store interface {
	// Load returns the persisted device id, or ErrNotFound.
	Load() (string, error)
	// Save persists the device id. Last write wins; the value never changes
	// once set, so a save race between readers is benign.
	Save(id string) error
}

// StorageError reports a failed load or save of the identity slot. It is
// recoverable: the caller may retry, or accept an ephemeral id for the
// session.
type StorageError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("device id storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
