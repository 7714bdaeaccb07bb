// Package clipboard manages the primary clip and a bounded history list for
// the clipboard panel. Hosts with a system clipboard push into it through
// SetPrimary; paste reads whatever is primary at that moment.
package clipboard

import (
	"sync"
	"time"
)

// DefaultHistorySize bounds the history list. Older unpinned items fall off
// the end.
const DefaultHistorySize = 20

// Item is one entry in the clipboard history.
type Item struct {
	Text     string
	Pinned   bool
	CopiedAt time.Time
}

// Provider is the surface the editor and the clipboard panel use. Memory is
// the in-process implementation; hosts may wrap a system clipboard behind
// the same interface.
type Provider interface {
	// Primary returns the current primary clip. ok is false when nothing
	// has been copied yet.
	Primary() (text string, ok bool)
	// SetPrimary replaces the primary clip and records it in history.
	// Empty text is ignored.
	SetPrimary(text string)
	// History lists items newest first, pinned items before unpinned.
	History() []Item
	// Pin marks the history item with the given text so it survives
	// eviction.
	Pin(text string)
	// Clear drops unpinned history and the primary clip.
	Clear()
}

// Memory is an in-process Provider. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	primary string
	hasClip bool
	items   []Item
	limit   int
	now     func() time.Time
}

// NewMemory returns an empty in-process clipboard with the default history
// size.
func NewMemory() *Memory {
	return &Memory{limit: DefaultHistorySize, now: time.Now}
}

// Primary implements Provider.
func (m *Memory) Primary() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.primary, m.hasClip
}

// SetPrimary implements Provider. Re-copying text already in history moves
// it to the front instead of duplicating it.
func (m *Memory) SetPrimary(text string) {
	if text == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primary = text
	m.hasClip = true

	for i, it := range m.items {
		if it.Text == text {
			it.CopiedAt = m.now()
			m.items = append(m.items[:i], m.items[i+1:]...)
			m.items = append([]Item{it}, m.items...)
			return
		}
	}
	m.items = append([]Item{{Text: text, CopiedAt: m.now()}}, m.items...)
	m.evictLocked()
}

// History implements Provider.
func (m *Memory) History() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if it.Pinned {
			out = append(out, it)
		}
	}
	for _, it := range m.items {
		if !it.Pinned {
			out = append(out, it)
		}
	}
	return out
}

// Pin implements Provider.
func (m *Memory) Pin(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].Text == text {
			m.items[i].Pinned = true
			return
		}
	}
}

// Clear implements Provider.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, it := range m.items {
		if it.Pinned {
			kept = append(kept, it)
		}
	}
	m.items = kept
	m.primary = ""
	m.hasClip = false
}

// evictLocked drops the oldest unpinned items beyond the limit.
func (m *Memory) evictLocked() {
	if len(m.items) <= m.limit {
		return
	}
	for i := len(m.items) - 1; i >= 0 && len(m.items) > m.limit; i-- {
		if !m.items[i].Pinned {
			m.items = append(m.items[:i], m.items[i+1:]...)
		}
	}
}
