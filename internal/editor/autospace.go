package editor

import "sync/atomic"

// Auto-space flag bits. One writer (the dispatch goroutine) mutates through
// the operation methods; SetInactiveFromUpdate races in from whatever
// goroutine delivers the host echo, which is why the state is an atomic
// word and not a locked struct.
const (
	autoSpaceActive uint32 = 1 << iota
	autoSpaceStayActiveNextUpdate
)

// AutoSpaceState remembers that the last commit inserted a conventional
// trailing space after punctuation, so the next edit can consume or replace
// that space instead of stacking another one.
//
// The stay-active bit covers the delayed-echo gap: the host update caused by
// the very edit that activated the state must not deactivate it. The first
// update degrades the bit, the second clears the state.
type AutoSpaceState struct {
	flags atomic.Uint32
}

// IsActive reports whether an auto-inserted space is pending before the
// cursor.
func (s *AutoSpaceState) IsActive() bool {
	return s.flags.Load()&autoSpaceActive != 0
}

// SetActive arms the state. stayActiveNextUpdate grants one host-update
// cycle of grace before SetInactiveFromUpdate may clear it.
func (s *AutoSpaceState) SetActive(stayActiveNextUpdate bool) {
	f := autoSpaceActive
	if stayActiveNextUpdate {
		f |= autoSpaceStayActiveNextUpdate
	}
	s.flags.Store(f)
}

// SetInactive clears the state unconditionally.
func (s *AutoSpaceState) SetInactive() {
	s.flags.Store(0)
}

// SetInactiveFromUpdate is called on every host content update. It degrades
// the stay-active bit when set, otherwise clears the state. Two updates
// fully deactivate an armed state; one does not.
func (s *AutoSpaceState) SetInactiveFromUpdate() {
	for {
		old := s.flags.Load()
		var next uint32
		if old&autoSpaceStayActiveNextUpdate != 0 {
			next = old &^ autoSpaceStayActiveNextUpdate
		} else {
			next = 0
		}
		if s.flags.CompareAndSwap(old, next) {
			return
		}
	}
}
