package key

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyBackspace, "Backspace"},
		{KeySpace, "Space"},
		{KeyShift, "Shift"},
		{KeyViewSymbols, "ViewSymbols"},
		{KeySelectAll, "SelectAll"},
		{KeyRune, "Rune"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestKeyClassification(t *testing.T) {
	if !KeyUp.IsArrow() || !KeyRight.IsArrow() {
		t.Error("arrow keys should classify as arrows")
	}
	if KeyHome.IsArrow() {
		t.Error("Home is not an arrow key")
	}
	if !KeyHome.IsNavigation() || !KeyLeft.IsNavigation() {
		t.Error("Home and Left should classify as navigation")
	}
	if !KeyBackspace.IsDeletion() || !KeyDelete.IsDeletion() {
		t.Error("Backspace and Delete should classify as deletion")
	}
	if KeySpace.IsDeletion() {
		t.Error("Space is not a deletion key")
	}
	if !KeyViewNumeric.IsViewSwitch() {
		t.Error("ViewNumeric should classify as a view switch")
	}
	if !KeyEmojiPanel.IsPanelToggle() {
		t.Error("EmojiPanel should classify as a panel toggle")
	}
	if !KeyPaste.IsClipboard() {
		t.Error("Paste should classify as clipboard")
	}
	if KeyRune.IsSpecial() {
		t.Error("KeyRune is not special")
	}
	if !KeyShift.IsSpecial() {
		t.Error("Shift is special")
	}
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"backspace", KeyBackspace},
		{"BS", KeyBackspace},
		{"Enter", KeyEnter},
		{" space ", KeySpace},
		{"CAPSLOCK", KeyCapsLock},
		{"viewsymbols2", KeyViewSymbols2},
		{"bogus", KeyNone},
	}

	for _, tt := range tests {
		if got := FromName(tt.name); got != tt.want {
			t.Errorf("FromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
