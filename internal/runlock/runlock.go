// Package runlock keeps two pipeline runs from sharing a data directory.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockName = ".jobmail.lock"

var ErrLocked = errors.New("another run holds the lock")

type Lock struct {
	lock *flock.Flock
}

// Acquire takes the lock file inside dir without blocking.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	path := filepath.Join(dir, lockName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{lock: fl}, nil
}

// Path is the lock file location.
func (l *Lock) Path() string {
	return l.lock.Path()
}

func (l *Lock) Release() error {
	return l.lock.Unlock()
}
