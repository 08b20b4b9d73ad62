// Package lockfile implements advisory file locking for directories shared
// between concurrent cabin invocations.
//
// Locks are implemented via flock(2) with LOCK_EX (exclusive). The kernel
// releases the lock automatically when the file descriptor is closed or the
// process exits, so a stale lockfile on disk never blocks future runs (the
// lock is on the fd, not the filename).
package lockfile

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"go.cabin.build/cabin/internal/core/domain"
	"go.trai.ch/zerr"
)

// ErrWouldBlock is returned by TryAcquire when another process holds the lock.
var ErrWouldBlock = zerr.New("lock is held by another process")

// Handle owns one exclusive advisory lock on one directory's lockfile.
// A Handle is released exactly once; further Release calls are no-ops.
type Handle struct {
	path string
	file *os.File

	mu       sync.Mutex
	released bool
}

// TryAcquire attempts a non-blocking exclusive lock on dir's lockfile.
// Returns ErrWouldBlock if another process holds it.
func TryAcquire(dir string) (*Handle, error) {
	return acquire(dir, syscall.LOCK_EX|syscall.LOCK_NB)
}

// Acquire takes an exclusive lock on dir's lockfile, blocking until the
// current holder releases it. There is no timeout: waiting is the correct
// behavior, the holder has exclusive use of the directory.
func Acquire(dir string) (*Handle, error) {
	return acquire(dir, syscall.LOCK_EX)
}

func acquire(dir string, how int) (*Handle, error) {
	path := filepath.Join(dir, domain.LockFileName)

	//nolint:gosec // Lockfile path is a fixed name inside a trusted directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.FilePerm)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockOpenFailed.Error())
	}

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, ErrWouldBlock
		}
		return nil, zerr.Wrap(err, domain.ErrLockAcquireFailed.Error())
	}

	return &Handle{path: path, file: f}, nil
}

// Path returns the lockfile path. Empty for a nil handle.
func (h *Handle) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Release drops the lock and closes the lockfile. It is nil-safe and
// idempotent so that both ordinary scope exit and the late-bound cleanup
// hook may call it.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true

	_ = syscall.Flock(int(h.file.Fd()), syscall.LOCK_UN)
	return h.file.Close()
}
