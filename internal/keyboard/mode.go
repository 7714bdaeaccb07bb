package keyboard

import "github.com/dshills/keybridge/internal/input/key"

// Mode identifies the active layout page of the keyboard.
type Mode uint8

const (
	// ModeCharacters is the primary letter layout.
	ModeCharacters Mode = iota
	// ModeSymbols is the first symbol page.
	ModeSymbols
	// ModeSymbols2 is the second symbol page.
	ModeSymbols2
	// ModeNumeric is the number pad layout.
	ModeNumeric
	// ModePhone is the telephone dial layout.
	ModePhone
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCharacters:
		return "characters"
	case ModeSymbols:
		return "symbols"
	case ModeSymbols2:
		return "symbols2"
	case ModeNumeric:
		return "numeric"
	case ModePhone:
		return "phone"
	default:
		return "unknown"
	}
}

// ModeForKey maps a view-switch key to the mode it selects.
func ModeForKey(k key.Key) (Mode, bool) {
	switch k {
	case key.KeyViewCharacters:
		return ModeCharacters, true
	case key.KeyViewSymbols:
		return ModeSymbols, true
	case key.KeyViewSymbols2:
		return ModeSymbols2, true
	case key.KeyViewNumeric:
		return ModeNumeric, true
	case key.KeyViewPhone:
		return ModePhone, true
	default:
		return ModeCharacters, false
	}
}
