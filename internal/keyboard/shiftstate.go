package keyboard

import (
	"sync"
	"time"
	"unicode"

	"github.com/dshills/keybridge/internal/textproc"
)

// ShiftState identifies the capitalization state of the layout.
type ShiftState uint8

const (
	// ShiftUnshifted is the lower-case layout.
	ShiftUnshifted ShiftState = iota
	// ShiftManual is a shift the user tapped; it lasts one commit.
	ShiftManual
	// ShiftAutomatic is a shift the capitalization context armed, e.g. at a
	// sentence start. It behaves like manual but was never requested.
	ShiftAutomatic
	// ShiftCapsLock shifts every commit until released.
	ShiftCapsLock
)

// String returns the state name.
func (s ShiftState) String() string {
	switch s {
	case ShiftUnshifted:
		return "unshifted"
	case ShiftManual:
		return "shifted-manual"
	case ShiftAutomatic:
		return "shifted-automatic"
	case ShiftCapsLock:
		return "caps-lock"
	default:
		return "unknown"
	}
}

// ShiftPolicy selects how repeated shift taps advance the state.
type ShiftPolicy uint8

const (
	// ShiftPolicyDoubleTap promotes to caps-lock when a second tap lands
	// within the double-tap window, and otherwise toggles between
	// unshifted and shifted-manual.
	ShiftPolicyDoubleTap ShiftPolicy = iota
	// ShiftPolicyCycle steps unshifted, shifted-manual, caps-lock, around,
	// ignoring tap timing.
	ShiftPolicyCycle
)

// String returns the policy name.
func (p ShiftPolicy) String() string {
	switch p {
	case ShiftPolicyDoubleTap:
		return "double-tap"
	case ShiftPolicyCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// ShiftMachine tracks the capitalization state of the layout. Methods are
// safe from any goroutine: taps arrive on the dispatch path while decay
// re-derivation arrives from the host echo callback.
type ShiftMachine struct {
	mu            sync.Mutex
	state         ShiftState
	policy        ShiftPolicy
	window        time.Duration
	autoCap       bool
	lastTap       time.Time
	held          bool
	usedWhileHeld bool
	now           func() time.Time
}

// NewShiftMachine builds a machine with the given policy and double-tap
// window. Automatic capitalization starts enabled.
func NewShiftMachine(policy ShiftPolicy, window time.Duration) *ShiftMachine {
	return &ShiftMachine{
		policy:  policy,
		window:  window,
		autoCap: true,
		now:     time.Now,
	}
}

// State returns the current shift state.
func (s *ShiftMachine) State() ShiftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Shifted reports whether the next commit will be cased upper.
func (s *ShiftMachine) Shifted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != ShiftUnshifted || s.held
}

// SetPolicy swaps the tap policy.
func (s *ShiftMachine) SetPolicy(p ShiftPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

// SetWindow swaps the double-tap window.
func (s *ShiftMachine) SetWindow(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = d
}

// SetAutoCapitalize toggles sentence-start automatic shift.
func (s *ShiftMachine) SetAutoCapitalize(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoCap = on
}

// HandleShiftDown marks the shift key held. Characters typed while it is
// held case upper without changing the tapped state.
func (s *ShiftMachine) HandleShiftDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
	s.usedWhileHeld = false
}

// HandleShiftUp releases the shift key. A release with no character typed in
// between counts as a tap and advances the state per the policy; after
// shift-as-modifier use the state drops straight back to unshifted.
func (s *ShiftMachine) HandleShiftUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = false
	if s.usedWhileHeld {
		s.usedWhileHeld = false
		s.state = ShiftUnshifted
		s.lastTap = time.Time{}
		return
	}
	s.tapLocked()
}

// HandleCapsLock handles the dedicated caps-lock key: a plain toggle,
// independent of policy and tap timing.
func (s *ShiftMachine) HandleCapsLock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ShiftCapsLock {
		s.state = ShiftUnshifted
	} else {
		s.state = ShiftCapsLock
	}
	s.lastTap = time.Time{}
}

// MarkUsed records a non-shift key pressed while shift is held, so the
// release is treated as modifier use rather than a tap.
func (s *ShiftMachine) MarkUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		s.usedWhileHeld = true
	}
}

// Apply cases the rune for the current state.
func (s *ShiftMachine) Apply(r rune) rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ShiftUnshifted || s.held {
		return unicode.ToUpper(r)
	}
	return r
}

// Decay re-derives the state after a non-shift commit or a host update.
// Caps-lock and a held shift key stick; otherwise the state drops to
// unshifted, or arms shifted-automatic when the capitalization context
// asks for it.
func (s *ShiftMachine) Decay(ctx textproc.CapsContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ShiftCapsLock || s.held {
		return
	}
	if s.autoCap && ctx == textproc.CapsSentence {
		s.state = ShiftAutomatic
	} else {
		s.state = ShiftUnshifted
	}
}

// Reset returns to unshifted and clears tap tracking. Called on focus loss.
func (s *ShiftMachine) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ShiftUnshifted
	s.lastTap = time.Time{}
	s.held = false
	s.usedWhileHeld = false
}

// tapLocked advances the state for one shift tap. Callers hold mu.
func (s *ShiftMachine) tapLocked() {
	now := s.now()
	defer func() { s.lastTap = now }()

	if s.policy == ShiftPolicyCycle {
		switch s.state {
		case ShiftUnshifted:
			s.state = ShiftManual
		case ShiftManual, ShiftAutomatic:
			s.state = ShiftCapsLock
		case ShiftCapsLock:
			s.state = ShiftUnshifted
		}
		return
	}

	doubleTap := !s.lastTap.IsZero() && now.Sub(s.lastTap) <= s.window
	switch {
	case doubleTap && s.state != ShiftCapsLock:
		s.state = ShiftCapsLock
	case s.state == ShiftUnshifted:
		s.state = ShiftManual
	default:
		s.state = ShiftUnshifted
	}
}
