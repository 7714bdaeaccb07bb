package key

import (
	"fmt"
	"strings"
)

// Key identifies a virtual keyboard key.
// For character keys, use KeyRune and set the Rune field in Event.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Editing keys
	KeyBackspace
	KeyDelete
	KeyEnter
	KeySpace
	KeyTab

	// Navigation keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd

	// State keys
	KeyShift
	KeyCapsLock

	// Layout mode switches
	KeyViewCharacters
	KeyViewSymbols
	KeyViewSymbols2
	KeyViewNumeric
	KeyViewPhone

	// Panel toggles
	KeyEmojiPanel
	KeyClipboardPanel
	KeyLanguageSwitch
	KeySettingsPanel

	// Clipboard operations
	KeyCut
	KeyCopy
	KeyPaste
	KeySelectAll

	// KeyRune is used for character keys (letters, digits, punctuation).
	// The actual character is stored in Event.Rune.
	KeyRune
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyBackspace:
		return "Backspace"
	case KeyDelete:
		return "Delete"
	case KeyEnter:
		return "Enter"
	case KeySpace:
		return "Space"
	case KeyTab:
		return "Tab"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyShift:
		return "Shift"
	case KeyCapsLock:
		return "CapsLock"
	case KeyViewCharacters:
		return "ViewCharacters"
	case KeyViewSymbols:
		return "ViewSymbols"
	case KeyViewSymbols2:
		return "ViewSymbols2"
	case KeyViewNumeric:
		return "ViewNumeric"
	case KeyViewPhone:
		return "ViewPhone"
	case KeyEmojiPanel:
		return "EmojiPanel"
	case KeyClipboardPanel:
		return "ClipboardPanel"
	case KeyLanguageSwitch:
		return "LanguageSwitch"
	case KeySettingsPanel:
		return "SettingsPanel"
	case KeyCut:
		return "Cut"
	case KeyCopy:
		return "Copy"
	case KeyPaste:
		return "Paste"
	case KeySelectAll:
		return "SelectAll"
	case KeyRune:
		return "Rune"
	default:
		return fmt.Sprintf("Key(%d)", k)
	}
}

// IsSpecial returns true if this is a special (non-character) key.
func (k Key) IsSpecial() bool {
	return k != KeyNone && k != KeyRune
}

// IsArrow returns true if this is an arrow key.
func (k Key) IsArrow() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsNavigation returns true if this is a navigation key.
func (k Key) IsNavigation() bool {
	return k.IsArrow() || k == KeyHome || k == KeyEnd
}

// IsDeletion returns true if this key removes text.
func (k Key) IsDeletion() bool {
	return k == KeyBackspace || k == KeyDelete
}

// IsViewSwitch returns true if this key changes the keyboard layout mode.
func (k Key) IsViewSwitch() bool {
	return k >= KeyViewCharacters && k <= KeyViewPhone
}

// IsPanelToggle returns true if this key opens or closes a panel.
func (k Key) IsPanelToggle() bool {
	return k >= KeyEmojiPanel && k <= KeySettingsPanel
}

// IsClipboard returns true if this is a clipboard operation key.
func (k Key) IsClipboard() bool {
	return k >= KeyCut && k <= KeySelectAll
}

// keyNameMap maps key names (lowercase) to Key values.
var keyNameMap = map[string]Key{
	"none":           KeyNone,
	"backspace":      KeyBackspace,
	"bs":             KeyBackspace,
	"delete":         KeyDelete,
	"del":            KeyDelete,
	"enter":          KeyEnter,
	"return":         KeyEnter,
	"space":          KeySpace,
	"tab":            KeyTab,
	"up":             KeyUp,
	"down":           KeyDown,
	"left":           KeyLeft,
	"right":          KeyRight,
	"home":           KeyHome,
	"end":            KeyEnd,
	"shift":          KeyShift,
	"capslock":       KeyCapsLock,
	"viewcharacters": KeyViewCharacters,
	"viewsymbols":    KeyViewSymbols,
	"viewsymbols2":   KeyViewSymbols2,
	"viewnumeric":    KeyViewNumeric,
	"viewphone":      KeyViewPhone,
	"emojipanel":     KeyEmojiPanel,
	"clipboardpanel": KeyClipboardPanel,
	"languageswitch": KeyLanguageSwitch,
	"settingspanel":  KeySettingsPanel,
	"cut":            KeyCut,
	"copy":           KeyCopy,
	"paste":          KeyPaste,
	"selectall":      KeySelectAll,
}

// FromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func FromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNameMap[name]; ok {
		return k
	}
	return KeyNone
}
