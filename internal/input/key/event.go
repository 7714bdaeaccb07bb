package key

import (
	"time"
	"unicode"
)

// Action describes the phase of a key event.
type Action int

const (
	// ActionDown is the initial press of a key.
	ActionDown Action = iota

	// ActionRepeat is an auto-repeat while the key is held.
	ActionRepeat

	// ActionUp is the release of a key.
	ActionUp
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionRepeat:
		return "repeat"
	case ActionUp:
		return "up"
	default:
		return "unknown"
	}
}

// Event represents a single key event from the keyboard surface.
type Event struct {
	// Key identifies the key.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Action is the event phase (down, repeat, up).
	Action Action

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key-down event with the current timestamp.
func NewEvent(k Key) Event {
	return Event{
		Key:       k,
		Action:    ActionDown,
		Timestamp: time.Now(),
	}
}

// NewRuneEvent creates a key-down event for a character.
func NewRuneEvent(r rune) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Action:    ActionDown,
		Timestamp: time.Now(),
	}
}

// NewRepeatEvent creates an auto-repeat event for a held key.
func NewRepeatEvent(k Key) Event {
	return Event{
		Key:       k,
		Action:    ActionRepeat,
		Timestamp: time.Now(),
	}
}

// NewUpEvent creates a key-up event.
func NewUpEvent(k Key) Event {
	return Event{
		Key:       k,
		Action:    ActionUp,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsPress returns true for the phases that produce input (down or repeat).
func (e Event) IsPress() bool {
	return e.Action == ActionDown || e.Action == ActionRepeat
}

// String returns a canonical representation, e.g. "a", "Backspace", "Shift/up".
func (e Event) String() string {
	var name string
	if e.Key == KeyRune {
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = string(e.Rune)
		}
	} else {
		name = e.Key.String()
	}
	if e.Action != ActionDown {
		name += "/" + e.Action.String()
	}
	return name
}
