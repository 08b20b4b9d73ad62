package indexsync

import "sync/atomic"

// Gate debounces index updates to at most one attempt per process.
//
// This is not single-flight: a failed first attempt still consumes the
// gate, and later calls report "no update performed" as if it had
// succeeded. The tool prefers not retrying a failed update within one
// invocation over re-hitting the network on every query miss.
type Gate struct {
	done atomic.Bool
}

// Begin atomically consumes the gate. It returns true exactly once per
// process: for the first caller.
func (g *Gate) Begin() bool {
	return !g.done.Swap(true)
}
