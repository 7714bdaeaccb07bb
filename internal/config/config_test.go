package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := New()

	kb := cfg.Keyboard()
	if kb.AutoCommitConfidence != DefaultAutoCommitConfidence {
		t.Errorf("AutoCommitConfidence = %v, want %v", kb.AutoCommitConfidence, DefaultAutoCommitConfidence)
	}
	if kb.WeakCommitConfidence != DefaultWeakCommitConfidence {
		t.Errorf("WeakCommitConfidence = %v, want %v", kb.WeakCommitConfidence, DefaultWeakCommitConfidence)
	}
	if !kb.DoubleSpacePeriod {
		t.Error("DoubleSpacePeriod = false, want true")
	}
	if kb.DoubleTapWindow != 300*time.Millisecond {
		t.Errorf("DoubleTapWindow = %v, want %v", kb.DoubleTapWindow, 300*time.Millisecond)
	}
	if !kb.AutoCapitalize {
		t.Error("AutoCapitalize = false, want true")
	}
	if kb.ShiftPolicy != ShiftPolicyDoubleTap {
		t.Errorf("ShiftPolicy = %q, want %q", kb.ShiftPolicy, ShiftPolicyDoubleTap)
	}
	if kb.Locale != "en" {
		t.Errorf("Locale = %q, want %q", kb.Locale, "en")
	}

	ed := cfg.Editor()
	if !ed.AutoSpace || !ed.MarkComposingWord || !ed.PhantomWordDelete {
		t.Errorf("Editor() = %+v, want all enabled", ed)
	}
	if got := cfg.Logging().Level; got != "info" {
		t.Errorf("Logging().Level = %q, want %q", got, "info")
	}
	if got := cfg.Remote().Listen; got != "" {
		t.Errorf("Remote().Listen = %q, want empty", got)
	}
	if got := cfg.Dictionary().Path; got != "" {
		t.Errorf("Dictionary().Path = %q, want empty", got)
	}
	if !cfg.Gesture().Enabled {
		t.Error("Gesture().Enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults failed: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "keybridge.toml", `
[keyboard]
autoCommitConfidence = 0.95
shiftPolicy = "cycle"
doubleTapWindow = "450ms"

[logging]
level = "debug"
`)
	cfg := New(WithPath(path))
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	kb := cfg.Keyboard()
	if kb.AutoCommitConfidence != 0.95 {
		t.Errorf("AutoCommitConfidence = %v, want 0.95", kb.AutoCommitConfidence)
	}
	if kb.ShiftPolicy != ShiftPolicyCycle {
		t.Errorf("ShiftPolicy = %q, want %q", kb.ShiftPolicy, ShiftPolicyCycle)
	}
	if kb.DoubleTapWindow != 450*time.Millisecond {
		t.Errorf("DoubleTapWindow = %v, want %v", kb.DoubleTapWindow, 450*time.Millisecond)
	}
	if !kb.DoubleSpacePeriod {
		t.Error("DoubleSpacePeriod lost its default on a partial file")
	}
	if kb.Locale != "en" {
		t.Errorf("Locale = %q, want default %q", kb.Locale, "en")
	}
	if got := cfg.Logging().Level; got != "debug" {
		t.Errorf("Logging().Level = %q, want %q", got, "debug")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "keybridge.yaml", `
keyboard:
  locale: de
remote:
  listen: "127.0.0.1:8787"
`)
	cfg := New(WithPath(path))
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := cfg.Keyboard().Locale; got != "de" {
		t.Errorf("Locale = %q, want %q", got, "de")
	}
	if got := cfg.Remote().Listen; got != "127.0.0.1:8787" {
		t.Errorf("Remote().Listen = %q, want %q", got, "127.0.0.1:8787")
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := New(WithPath(filepath.Join(t.TempDir(), "absent.toml")))
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() with missing file failed: %v", err)
	}
	if got := cfg.Keyboard().Locale; got != "en" {
		t.Errorf("Locale = %q, want %q", got, "en")
	}
}

func TestLoadWithoutPath(t *testing.T) {
	if err := New().Load(); err != nil {
		t.Errorf("Load() without a path failed: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, "keybridge.toml", "[keyboard]\nautoCommitConfidence = 1.5\n")
	cfg := New(WithPath(path))
	notified := false
	cfg.OnChange(func() { notified = true })

	err := cfg.Load()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Load() error = %v, want ErrValidationFailed", err)
	}
	if got := cfg.Keyboard().AutoCommitConfidence; got != DefaultAutoCommitConfidence {
		t.Errorf("AutoCommitConfidence after rejected load = %v, want %v", got, DefaultAutoCommitConfidence)
	}
	if notified {
		t.Error("rejected load notified change listeners")
	}
}

func TestGetAndSet(t *testing.T) {
	cfg := New()

	if _, ok := cfg.Get("keyboard.missing"); ok {
		t.Error("Get() reported a value for an unset key")
	}
	v, ok := cfg.Get("keyboard.locale")
	if !ok || v != "en" {
		t.Errorf("Get(keyboard.locale) = %v, %v, want %q, true", v, ok, "en")
	}

	cfg.Set("keyboard.locale", "fr")
	if got := cfg.Keyboard().Locale; got != "fr" {
		t.Errorf("Locale after Set = %q, want %q", got, "fr")
	}

	cfg.Set("custom.nested.flag", true)
	v, ok = cfg.Get("custom.nested.flag")
	if !ok || v != true {
		t.Errorf("Get(custom.nested.flag) = %v, %v, want true, true", v, ok)
	}
}

func TestGetTypeMismatchFallsBack(t *testing.T) {
	cfg := New()

	cfg.Set("keyboard.doubleTapWindow", 42)
	if got := cfg.Keyboard().DoubleTapWindow; got != 300*time.Millisecond {
		t.Errorf("DoubleTapWindow = %v, want default %v", got, 300*time.Millisecond)
	}
	cfg.Set("keyboard.doubleTapWindow", "soon")
	if got := cfg.Keyboard().DoubleTapWindow; got != 300*time.Millisecond {
		t.Errorf("DoubleTapWindow = %v, want default %v", got, 300*time.Millisecond)
	}
	cfg.Set("keyboard.autoCapitalize", "yes")
	if !cfg.Keyboard().AutoCapitalize {
		t.Error("AutoCapitalize = false, want default true")
	}
	cfg.Set("keyboard.autoCommitConfidence", "high")
	if got := cfg.Keyboard().AutoCommitConfidence; got != DefaultAutoCommitConfidence {
		t.Errorf("AutoCommitConfidence = %v, want default %v", got, DefaultAutoCommitConfidence)
	}
}

func TestFloatFromInteger(t *testing.T) {
	path := writeConfig(t, "keybridge.toml", "[keyboard]\nautoCommitConfidence = 1\n")
	cfg := New(WithPath(path))
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := cfg.Keyboard().AutoCommitConfidence; got != 1.0 {
		t.Errorf("AutoCommitConfidence = %v, want 1.0", got)
	}
}

func TestOnChange(t *testing.T) {
	path := writeConfig(t, "keybridge.toml", "[keyboard]\nlocale = \"de\"\n")
	cfg := New(WithPath(path))
	calls := 0
	cfg.OnChange(func() { calls++ })
	cfg.OnChange(nil)

	cfg.Set("keyboard.locale", "fr")
	if calls != 1 {
		t.Fatalf("calls after Set = %d, want 1", calls)
	}
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls after Load = %d, want 2", calls)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"confidence above one", "keyboard.autoCommitConfidence", 1.2},
		{"confidence below zero", "keyboard.weakCommitConfidence", -0.1},
		{"unknown shift policy", "keyboard.shiftPolicy", "triple-tap"},
		{"unknown log level", "logging.level", "loud"},
		{"negative window", "keyboard.doubleTapWindow", "-50ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Set(tt.key, tt.value)
			if err := cfg.Validate(); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Validate() error = %v, want ErrValidationFailed", err)
			}
		})
	}
}
