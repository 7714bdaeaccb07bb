package editor

import "sync/atomic"

// MassSelection is a reentrant counter bracketing bursts of cursor-movement
// repeats (a held arrow key). While active, host updates take a cheap path
// that skips composing and suggestion recomputation; when the last End
// closes the burst, exactly one full resynchronization is replayed.
type MassSelection struct {
	count atomic.Int32
}

// Begin enters a burst. Nestable.
func (m *MassSelection) Begin() {
	m.count.Add(1)
}

// End leaves a burst. It returns true exactly when this call closes the
// outermost bracket, i.e. when one synthetic full update must be replayed.
// Unbalanced End calls are absorbed.
func (m *MassSelection) End() bool {
	for {
		old := m.count.Load()
		if old <= 0 {
			return false
		}
		if m.count.CompareAndSwap(old, old-1) {
			return old == 1
		}
	}
}

// IsActive reports whether a burst is in progress.
func (m *MassSelection) IsActive() bool {
	return m.count.Load() > 0
}

// Reset force-closes any burst without triggering a replay.
func (m *MassSelection) Reset() {
	m.count.Store(0)
}
