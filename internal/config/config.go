package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config provides dotted-key access to the merged settings: an optional
// TOML or YAML file over the built-in defaults. Section accessors return
// typed snapshots; Set updates single values at runtime. All methods are
// safe for concurrent use.
type Config struct {
	path string

	mu        sync.RWMutex
	values    map[string]any
	listeners []func()
	onError   func(error)

	watchMu sync.Mutex
	watch   *fileWatcher
}

// Option configures a Config.
type Option func(*Config)

// WithPath sets the settings file. The file may not exist yet; Load treats
// a missing file as empty and Watch picks it up when it appears.
func WithPath(path string) Option {
	return func(c *Config) { c.path = path }
}

// New returns a Config populated with the built-in defaults. Call Load to
// merge the file at the configured path.
func New(opts ...Option) *Config {
	c := &Config{values: defaults()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the configured settings file, empty when running on
// defaults only.
func (c *Config) Path() string { return c.path }

// Load merges the settings file over the defaults, validates the result,
// and swaps it in. On any error the previous settings stay in effect.
func (c *Config) Load() error {
	if c.path == "" {
		return nil
	}
	loaded, err := loadFile(c.path)
	if err != nil {
		return err
	}
	next := defaults()
	mergeMaps(next, loaded)
	if err := (&Config{values: next}).Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.values = next
	c.mu.Unlock()
	c.notify()
	return nil
}

// Get returns the raw value at a dotted key.
func (c *Config) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	node := c.values
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			return nil, false
		}
		node = child
	}
	v, ok := node[parts[len(parts)-1]]
	return v, ok
}

// Set updates one dotted key at runtime and notifies change listeners.
// Intermediate tables are created as needed. Set does not validate; use it
// for values already vetted by the caller.
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	node := c.values
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[p] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	c.mu.Unlock()
	c.notify()
}

// OnChange registers a callback run after every successful Load, every
// Set, and every live reload.
func (c *Config) OnChange(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// SetErrorHandler wires the sink for background reload failures. Without
// one they are dropped.
func (c *Config) SetErrorHandler(fn func(error)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

// Validate checks value ranges across all sections.
func (c *Config) Validate() error {
	var problems []string
	kb := c.Keyboard()
	if kb.AutoCommitConfidence < 0 || kb.AutoCommitConfidence > 1 {
		problems = append(problems, fmt.Sprintf("keyboard.autoCommitConfidence %v outside [0, 1]", kb.AutoCommitConfidence))
	}
	if kb.WeakCommitConfidence < 0 || kb.WeakCommitConfidence > 1 {
		problems = append(problems, fmt.Sprintf("keyboard.weakCommitConfidence %v outside [0, 1]", kb.WeakCommitConfidence))
	}
	if kb.DoubleTapWindow <= 0 {
		problems = append(problems, "keyboard.doubleTapWindow must be positive")
	}
	switch kb.ShiftPolicy {
	case ShiftPolicyDoubleTap, ShiftPolicyCycle:
	default:
		problems = append(problems, fmt.Sprintf("keyboard.shiftPolicy %q unknown", kb.ShiftPolicy))
	}
	switch lg := c.Logging(); lg.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q unknown", lg.Level))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) notify() {
	c.mu.RLock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func (c *Config) fail(err error) {
	c.mu.RLock()
	fn := c.onError
	c.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// mergeMaps deep-merges src over dst. Nested tables merge key by key;
// everything else replaces.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		sv, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dv, ok := dst[k].(map[string]any)
		if !ok {
			dv = make(map[string]any, len(sv))
			dst[k] = dv
		}
		mergeMaps(dv, sv)
	}
}

func (c *Config) getBoolOr(key string, def bool) bool {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func (c *Config) getFloatOr(key string, def float64) float64 {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

func (c *Config) getStringOr(key string, def string) string {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// getDurationOr reads a duration stored as a string such as "300ms".
func (c *Config) getDurationOr(key string, def time.Duration) time.Duration {
	s := c.getStringOr(key, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
