// Package runlock serializes batches that share an output root.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the output root.
const FileName = ".keyframer.lock"

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another keyframer batch is already using this output directory")

// Lock is an acquired advisory lock on an output root.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire creates outputRoot if needed and takes a non-blocking exclusive lock
// on its lock file.
func Acquire(outputRoot string) (*Lock, error) {
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output directory: %w", err)
	}
	path := filepath.Join(outputRoot, FileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
