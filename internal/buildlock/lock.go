// Package buildlock serializes shipwright runs against a shared state
// directory with an advisory file lock.
package buildlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld means another shipwright process owns the build directory.
var ErrHeld = errors.New("another shipwright build is already running")

// Lock guards one state directory.
type Lock struct {
	path string
	lock *flock.Flock
}

// New prepares a lock file inside stateDir.
func New(stateDir string) (*Lock, error) {
	if stateDir == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	path := filepath.Join(stateDir, "shipwright.lock")
	return &Lock{path: path, lock: flock.New(path)}, nil
}

// Acquire takes the lock without blocking. ErrHeld is returned when another
// process holds it.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock file %s)", ErrHeld, l.path)
	}
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
