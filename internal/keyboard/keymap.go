package keyboard

import "github.com/dshills/keybridge/internal/input/key"

// Operation is the family a key dispatches to.
type Operation uint8

const (
	// OpNone leaves the event unhandled.
	OpNone Operation = iota
	// OpCommit inserts text: rune keys, space, enter, tab.
	OpCommit
	// OpDeletion removes text: backspace, delete.
	OpDeletion
	// OpNavigation moves the cursor.
	OpNavigation
	// OpShift feeds the shift state machine.
	OpShift
	// OpModeSwitch changes the layout page.
	OpModeSwitch
	// OpPanelToggle opens or closes an auxiliary panel.
	OpPanelToggle
	// OpClipboard runs a clipboard operation.
	OpClipboard
)

// String returns the operation family name.
func (o Operation) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpCommit:
		return "commit"
	case OpDeletion:
		return "deletion"
	case OpNavigation:
		return "navigation"
	case OpShift:
		return "shift"
	case OpModeSwitch:
		return "mode-switch"
	case OpPanelToggle:
		return "panel-toggle"
	case OpClipboard:
		return "clipboard"
	default:
		return "unknown"
	}
}

// Keymap resolves keys to operation families per layout mode, so layouts
// stay data. Bindings registered for a specific mode shadow the
// mode-independent defaults; binding OpNone in a mode masks a key there.
type Keymap struct {
	perMode map[Mode]map[key.Key]Operation
	global  map[key.Key]Operation
}

// NewKeymap returns an empty keymap. Rune keys always resolve to OpCommit;
// everything else resolves to OpNone until bound.
func NewKeymap() *Keymap {
	return &Keymap{
		perMode: make(map[Mode]map[key.Key]Operation),
		global:  make(map[key.Key]Operation),
	}
}

// Bind registers an operation for a key in one mode.
func (km *Keymap) Bind(mode Mode, k key.Key, op Operation) {
	m, ok := km.perMode[mode]
	if !ok {
		m = make(map[key.Key]Operation)
		km.perMode[mode] = m
	}
	m[k] = op
}

// BindGlobal registers a mode-independent operation for a key.
func (km *Keymap) BindGlobal(k key.Key, op Operation) {
	km.global[k] = op
}

// Resolve returns the operation for a key in the given mode.
func (km *Keymap) Resolve(mode Mode, k key.Key) Operation {
	if k == key.KeyRune {
		return OpCommit
	}
	if m, ok := km.perMode[mode]; ok {
		if op, ok := m[k]; ok {
			return op
		}
	}
	if op, ok := km.global[k]; ok {
		return op
	}
	return OpNone
}

// DefaultKeymap returns the stock bindings. The number and dial pads mask
// the shift and emoji keys their layouts do not carry.
func DefaultKeymap() *Keymap {
	km := NewKeymap()

	km.BindGlobal(key.KeySpace, OpCommit)
	km.BindGlobal(key.KeyEnter, OpCommit)
	km.BindGlobal(key.KeyTab, OpCommit)

	km.BindGlobal(key.KeyBackspace, OpDeletion)
	km.BindGlobal(key.KeyDelete, OpDeletion)

	for _, k := range []key.Key{key.KeyUp, key.KeyDown, key.KeyLeft, key.KeyRight, key.KeyHome, key.KeyEnd} {
		km.BindGlobal(k, OpNavigation)
	}

	km.BindGlobal(key.KeyShift, OpShift)
	km.BindGlobal(key.KeyCapsLock, OpShift)

	for _, k := range []key.Key{key.KeyViewCharacters, key.KeyViewSymbols, key.KeyViewSymbols2, key.KeyViewNumeric, key.KeyViewPhone} {
		km.BindGlobal(k, OpModeSwitch)
	}

	for _, k := range []key.Key{key.KeyEmojiPanel, key.KeyClipboardPanel, key.KeyLanguageSwitch, key.KeySettingsPanel} {
		km.BindGlobal(k, OpPanelToggle)
	}

	for _, k := range []key.Key{key.KeyCut, key.KeyCopy, key.KeyPaste, key.KeySelectAll} {
		km.BindGlobal(k, OpClipboard)
	}

	for _, mode := range []Mode{ModeNumeric, ModePhone} {
		km.Bind(mode, key.KeyShift, OpNone)
		km.Bind(mode, key.KeyCapsLock, OpNone)
		km.Bind(mode, key.KeyEmojiPanel, OpNone)
	}

	return km
}
