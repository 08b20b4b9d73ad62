package lockfile

import "sync"

// Cell is the process-wide reference to whichever lock handle is currently
// active. It is updated on every ownership transfer, so a late-bound cleanup
// action always releases the lock that is genuinely held at that instant,
// not whichever one was active when the cleanup was registered.
type Cell struct {
	mu sync.Mutex
	h  *Handle
}

// Set records h as the currently active lock.
func (c *Cell) Set(h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.h = h
}

// Current returns the currently active lock handle, which may be nil.
func (c *Cell) Current() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.h
}

// ReleaseCurrent releases whatever handle the cell references at this
// instant and clears it. Safe when no lock is active.
func (c *Cell) ReleaseCurrent() error {
	c.mu.Lock()
	h := c.h
	c.h = nil
	c.mu.Unlock()

	return h.Release()
}
