// Package filelock guards the history database against concurrent access
// from multiple pscan processes. Two frontends pointed at the same
// database (say, a web server and a TUI) coordinate through an exclusive
// flock on a sidecar lock file.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when the lock cannot be acquired within the
// configured timeout.
var ErrLockTimeout = errors.New("timed out waiting for file lock")

// retryDelay is the poll interval while waiting for a contended lock.
const retryDelay = 50 * time.Millisecond

// Guard wraps a flock file lock for coordinating access to a file.
type Guard struct {
	flock *flock.Flock
	path  string
}

// ForFile creates a Guard for the given data file. The lock itself lives
// in a ".lock" sidecar next to the file; the parent directory is created
// if needed.
func ForFile(path string) (*Guard, error) {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &Guard{flock: flock.New(lockPath), path: lockPath}, nil
}

// TryLock attempts to acquire the exclusive lock without blocking.
// Returns true if the lock was acquired, false if another process holds
// it.
func (g *Guard) TryLock() (bool, error) {
	acquired, err := g.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock %s: %w", g.path, err)
	}
	return acquired, nil
}

// Lock acquires the exclusive lock, waiting up to timeout. A zero timeout
// waits forever.
func (g *Guard) Lock(timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	acquired, err := g.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, g.path)
		}
		return fmt.Errorf("lock %s: %w", g.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLockTimeout, g.path)
	}
	return nil
}

// Unlock releases the lock.
func (g *Guard) Unlock() error {
	if err := g.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", g.path, err)
	}
	return nil
}
