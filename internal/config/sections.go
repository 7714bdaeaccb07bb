package config

import "time"

// Confidence gates for the suggestion pipeline. The auto-commit gate is
// strict: a candidate must score beyond it, not at it.
const (
	DefaultAutoCommitConfidence = 0.9
	DefaultWeakCommitConfidence = 0.8
)

// Shift policy names accepted by keyboard.shiftPolicy.
const (
	ShiftPolicyDoubleTap = "double-tap"
	ShiftPolicyCycle     = "cycle"
)

// defaults returns the built-in settings tree. The section accessors carry
// the same fallbacks per key, so values removed from the tree at runtime
// still read back as defaults.
func defaults() map[string]any {
	return map[string]any{
		"keyboard": map[string]any{
			"autoCommitConfidence": DefaultAutoCommitConfidence,
			"weakCommitConfidence": DefaultWeakCommitConfidence,
			"doubleSpacePeriod":    true,
			"doubleTapWindow":      "300ms",
			"autoCapitalize":       true,
			"shiftPolicy":          ShiftPolicyDoubleTap,
			"locale":               "en",
		},
		"editor": map[string]any{
			"autoSpace":         true,
			"markComposingWord": true,
			"phantomWordDelete": true,
		},
		"dictionary": map[string]any{
			"path":       "",
			"importPath": "",
		},
		"expansion": map[string]any{
			"scriptPath": "",
		},
		"gesture": map[string]any{
			"enabled": true,
		},
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
		"remote": map[string]any{
			"listen": "",
		},
	}
}

// KeyboardConfig is a snapshot of the key-dispatch settings.
type KeyboardConfig struct {
	// AutoCommitConfidence is the strict lower bound for applying a
	// suggestion without explicit selection.
	AutoCommitConfidence float64

	// WeakCommitConfidence is the lower bound for surfacing a candidate
	// in the suggestion strip at all.
	WeakCommitConfidence float64

	// DoubleSpacePeriod turns a quick second space into ". ".
	DoubleSpacePeriod bool

	// DoubleTapWindow bounds both the double-space period and the
	// double-tap caps-lock promotion.
	DoubleTapWindow time.Duration

	// AutoCapitalize arms the automatic shift at sentence starts.
	AutoCapitalize bool

	// ShiftPolicy is ShiftPolicyDoubleTap or ShiftPolicyCycle.
	ShiftPolicy string

	// Locale tags saved words and scopes dictionary queries.
	Locale string
}

// Keyboard returns the key-dispatch settings.
func (c *Config) Keyboard() KeyboardConfig {
	return KeyboardConfig{
		AutoCommitConfidence: c.getFloatOr("keyboard.autoCommitConfidence", DefaultAutoCommitConfidence),
		WeakCommitConfidence: c.getFloatOr("keyboard.weakCommitConfidence", DefaultWeakCommitConfidence),
		DoubleSpacePeriod:    c.getBoolOr("keyboard.doubleSpacePeriod", true),
		DoubleTapWindow:      c.getDurationOr("keyboard.doubleTapWindow", 300*time.Millisecond),
		AutoCapitalize:       c.getBoolOr("keyboard.autoCapitalize", true),
		ShiftPolicy:          c.getStringOr("keyboard.shiftPolicy", ShiftPolicyDoubleTap),
		Locale:               c.getStringOr("keyboard.locale", "en"),
	}
}

// EditorConfig is a snapshot of the text-editing settings.
type EditorConfig struct {
	// AutoSpace enables the automatic space after committed punctuation.
	AutoSpace bool

	// MarkComposingWord keeps the word at the cursor marked as composing.
	MarkComposingWord bool

	// PhantomWordDelete widens the first backspace after an inserted
	// completion to the whole word.
	PhantomWordDelete bool
}

// Editor returns the text-editing settings.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		AutoSpace:         c.getBoolOr("editor.autoSpace", true),
		MarkComposingWord: c.getBoolOr("editor.markComposingWord", true),
		PhantomWordDelete: c.getBoolOr("editor.phantomWordDelete", true),
	}
}

// DictionaryConfig is a snapshot of the user-dictionary settings.
type DictionaryConfig struct {
	// Path is the SQLite database file. Empty keeps the dictionary in
	// memory for the session.
	Path string

	// ImportPath is an optional JSON word list imported at startup.
	ImportPath string
}

// Dictionary returns the user-dictionary settings.
func (c *Config) Dictionary() DictionaryConfig {
	return DictionaryConfig{
		Path:       c.getStringOr("dictionary.path", ""),
		ImportPath: c.getStringOr("dictionary.importPath", ""),
	}
}

// ExpansionConfig is a snapshot of the abbreviation-expansion settings.
type ExpansionConfig struct {
	// ScriptPath is the Lua script registering expansions. Empty disables
	// the hook.
	ScriptPath string
}

// Expansion returns the abbreviation-expansion settings.
func (c *Config) Expansion() ExpansionConfig {
	return ExpansionConfig{
		ScriptPath: c.getStringOr("expansion.scriptPath", ""),
	}
}

// GestureConfig is a snapshot of the gesture-typing settings.
type GestureConfig struct {
	// Enabled wires the word-data classifier and its autosave refresh.
	Enabled bool
}

// Gesture returns the gesture-typing settings.
func (c *Config) Gesture() GestureConfig {
	return GestureConfig{
		Enabled: c.getBoolOr("gesture.enabled", true),
	}
}

// LoggingConfig is a snapshot of the logging settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string

	// File is the log destination; empty logs to stderr.
	File string
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
		File:  c.getStringOr("logging.file", ""),
	}
}

// RemoteConfig is a snapshot of the websocket bridge settings.
type RemoteConfig struct {
	// Listen is the bridge address, for example "127.0.0.1:8787". Empty
	// disables the bridge.
	Listen string
}

// Remote returns the websocket bridge settings.
func (c *Config) Remote() RemoteConfig {
	return RemoteConfig{
		Listen: c.getStringOr("remote.listen", ""),
	}
}
