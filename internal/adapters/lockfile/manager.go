package lockfile

import (
	"errors"
	"fmt"
	"os"

	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

// NoLockEnv disables all file locking when set, for environments where
// flock is unavailable or undesired.
const NoLockEnv = "CABIN_NO_RUN_LOCK"

// Manager provides scoped lock acquisition per directory, with blocking
// fallback and hand-over-hand transfer between scopes.
type Manager struct {
	logger ports.Logger
}

// NewManager creates a new Manager with the given logger.
func NewManager(logger ports.Logger) *Manager {
	return &Manager{logger: logger}
}

// Enabled reports whether locking is active for this process.
func (m *Manager) Enabled() bool {
	return os.Getenv(NoLockEnv) == ""
}

// WithLock runs fn while holding an exclusive lock on dir. When locking is
// disabled fn runs unguarded with a nil handle. The lock is released on
// every exit path of fn.
func (m *Manager) WithLock(enabled bool, dir string, fn func(*Handle) error) error {
	if !enabled {
		return fn(nil)
	}

	handle, err := m.Acquire(dir)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Release() }()

	return fn(handle)
}

// Acquire takes an exclusive lock on dir, first non-blocking, then blocking
// with a diagnostic if another process holds it.
func (m *Manager) Acquire(dir string) (*Handle, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockDirCreateFailed.Error())
	}

	handle, err := TryAcquire(dir)
	if err == nil {
		return handle, nil
	}
	if !errors.Is(err, ErrWouldBlock) {
		return nil, err
	}

	m.logger.Warn(fmt.Sprintf("blocking on shared lock %s held by another process", dir))

	handle, err = Acquire(dir)
	if err != nil {
		return nil, err
	}

	m.logger.Warn(fmt.Sprintf("acquired shared lock %s", dir))
	return handle, nil
}

// Exchange narrows lock coverage from the held coarse lock to a lock on
// fineDir, hand over hand: the fine lock is acquired and published to cell
// before the coarse lock is released, so no window exists where neither
// lock is held.
//
// When locking is disabled (coarse nil and manager disabled) it returns a
// nil handle and clears the cell reference.
func (m *Manager) Exchange(fineDir string, coarse *Handle, cell *Cell) (*Handle, error) {
	if !m.Enabled() {
		cell.Set(nil)
		return nil, coarse.Release()
	}

	fine, err := m.Acquire(fineDir)
	if err != nil {
		return nil, err
	}

	cell.Set(fine)
	if err := coarse.Release(); err != nil {
		return fine, zerr.Wrap(err, "failed to release outer lock after transfer")
	}

	return fine, nil
}
