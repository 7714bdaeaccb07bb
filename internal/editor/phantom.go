package editor

import (
	"sync/atomic"

	"github.com/dshills/keybridge/internal/punct"
	"github.com/dshills/keybridge/internal/suggest"
)

// Phantom-space flag bits, same single-writer-plus-racing-echo discipline as
// the auto-space state.
const (
	phantomActive uint32 = 1 << iota
	phantomShowComposingRegion
	phantomStayActiveNextUpdate
)

// PhantomSpaceState models the invisible space owed to the text after a
// suggestion or gesture commit: silently consumable by punctuation,
// converted to a real space before the next word, or undone by an immediate
// backward delete.
//
// The stored candidate is the completion that armed the state. It exists so
// an immediate backward delete can be reported to the originating provider
// as a revert rather than a plain deletion, and it clears exactly when the
// state transitions fully inactive.
type PhantomSpaceState struct {
	flags     atomic.Uint32
	candidate atomic.Pointer[suggest.Candidate]
}

// IsActive reports whether a phantom space is owed.
func (s *PhantomSpaceState) IsActive() bool {
	return s.flags.Load()&phantomActive != 0
}

// ShowComposingRegion reports whether the committed text should be marked
// as the composing region on the next full update. Gesture commits set
// this so the just-swiped word stays correctable.
func (s *PhantomSpaceState) ShowComposingRegion() bool {
	return s.flags.Load()&phantomShowComposingRegion != 0
}

// Candidate returns the completion that armed the state, nil when none.
func (s *PhantomSpaceState) Candidate() *suggest.Candidate {
	return s.candidate.Load()
}

// TakeCandidate returns the stored candidate and clears it, so a revert is
// reported at most once.
func (s *PhantomSpaceState) TakeCandidate() *suggest.Candidate {
	return s.candidate.Swap(nil)
}

// SetActive arms the state. candidate may be nil for commits with no
// originating suggestion (gestures, pasted text).
func (s *PhantomSpaceState) SetActive(showComposingRegion, stayActiveNextUpdate bool, candidate *suggest.Candidate) {
	f := phantomActive
	if showComposingRegion {
		f |= phantomShowComposingRegion
	}
	if stayActiveNextUpdate {
		f |= phantomStayActiveNextUpdate
	}
	s.candidate.Store(candidate)
	s.flags.Store(f)
}

// SetInactive clears the state and the stored candidate unconditionally.
func (s *PhantomSpaceState) SetInactive() {
	s.flags.Store(0)
	s.candidate.Store(nil)
}

// SetInactiveFromUpdate is called on every host content update. It degrades
// the stay-active bit when set; otherwise it clears the state, and with it
// the stored candidate.
func (s *PhantomSpaceState) SetInactiveFromUpdate() {
	for {
		old := s.flags.Load()
		var next uint32
		if old&phantomStayActiveNextUpdate != 0 {
			next = old &^ phantomStayActiveNextUpdate
		} else {
			next = 0
		}
		if s.flags.CompareAndSwap(old, next) {
			if next == 0 {
				s.candidate.Store(nil)
			}
			return
		}
	}
}

// Determine decides whether the next commit receives a leading phantom
// space. The check is two-sided: the character before the cursor must admit
// a following space and the first character of the incoming text must admit
// a preceding one. That blocks a space between an open parenthesis and a
// word while allowing one between ordinary words.
func (s *PhantomSpaceState) Determine(content Content, incoming string, forceActive bool, rules punct.Rules) bool {
	if !s.IsActive() && !forceActive {
		return false
	}
	if !rules.EnableAutoSpace {
		return false
	}
	if !content.Selection.IsValid() {
		return false
	}
	prev, ok := content.CharBeforeCursor()
	if !ok {
		return false
	}
	first, ok := firstRune(incoming)
	if !ok {
		return false
	}
	return rules.AllowsPhantomBefore(prev) && rules.AllowsPhantomAfter(first)
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}
