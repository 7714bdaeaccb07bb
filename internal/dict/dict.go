// Package dict holds the word dictionaries behind autosave and the typo
// suggestion provider: a read-only embedded wordlist and a mutable user
// dictionary with per-word frequencies.
package dict

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// Frequency bounds for dictionary entries. A brand-new word lands above the
// default so recently typed words outrank the embedded list; every later
// sighting bumps it a little further, saturating at FrequencyMax.
const (
	FrequencyMin     = 1
	FrequencyMax     = 255
	FrequencyDefault = 128

	FrequencyBoostNew    = 35
	FrequencyBoostRepeat = 10
)

// ErrEmptyWord is returned when an entry with no word text is inserted.
var ErrEmptyWord = errors.New("dict: empty word")

// ErrNotFound is returned by Update when the entry does not exist.
var ErrNotFound = errors.New("dict: entry not found")

// Entry is one user-dictionary word. Locale is a canonical BCP-47 tag;
// empty means the word applies to every locale.
type Entry struct {
	Word      string
	Locale    string
	Frequency int
	UpdatedAt int64
}

// Store is the user-dictionary contract. QueryExact prefers a
// locale-specific entry and falls back to a locale-agnostic one; it returns
// nil without error when the word is unknown.
type Store interface {
	QueryExact(word, locale string) (*Entry, error)
	Insert(e Entry) error
	Update(e Entry) error
	All(locale string) ([]Entry, error)
}

// NormLocale canonicalizes a locale key, mapping unparseable input to the
// empty (all-locales) key.
func NormLocale(locale string) string {
	if locale == "" {
		return ""
	}
	tag := language.Make(locale)
	if tag == language.Und {
		return ""
	}
	return tag.String()
}

// ClampFrequency bounds f to the valid frequency range.
func ClampFrequency(f int) int {
	if f < FrequencyMin {
		return FrequencyMin
	}
	if f > FrequencyMax {
		return FrequencyMax
	}
	return f
}

// Save records one finished word: unknown words insert at the boosted
// default, known words gain the smaller repeat bump. The stored entry is
// returned.
func Save(s Store, word, locale string) (Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Entry{}, ErrEmptyWord
	}
	locale = NormLocale(locale)

	existing, err := s.QueryExact(word, locale)
	if err != nil {
		return Entry{}, err
	}
	now := time.Now().Unix()
	if existing == nil {
		e := Entry{
			Word:      word,
			Locale:    locale,
			Frequency: ClampFrequency(FrequencyDefault + FrequencyBoostNew),
			UpdatedAt: now,
		}
		if err := s.Insert(e); err != nil {
			return Entry{}, err
		}
		return e, nil
	}
	e := *existing
	e.Frequency = ClampFrequency(e.Frequency + FrequencyBoostRepeat)
	e.UpdatedAt = now
	if err := s.Update(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

type memKey struct {
	word   string
	locale string
}

// MemStore is an in-memory Store for tests and sessions without a database
// path.
type MemStore struct {
	mu      sync.RWMutex
	entries map[memKey]Entry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[memKey]Entry)}
}

// QueryExact implements Store.
func (m *MemStore) QueryExact(word, locale string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[memKey{word, NormLocale(locale)}]; ok {
		out := e
		return &out, nil
	}
	if e, ok := m.entries[memKey{word, ""}]; ok {
		out := e
		return &out, nil
	}
	return nil, nil
}

// Insert implements Store. Inserting an existing (word, locale) pair
// overwrites it.
func (m *MemStore) Insert(e Entry) error {
	if e.Word == "" {
		return ErrEmptyWord
	}
	e.Locale = NormLocale(e.Locale)
	e.Frequency = ClampFrequency(e.Frequency)
	m.mu.Lock()
	m.entries[memKey{e.Word, e.Locale}] = e
	m.mu.Unlock()
	return nil
}

// Update implements Store.
func (m *MemStore) Update(e Entry) error {
	if e.Word == "" {
		return ErrEmptyWord
	}
	e.Locale = NormLocale(e.Locale)
	e.Frequency = ClampFrequency(e.Frequency)
	key := memKey{e.Word, e.Locale}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return ErrNotFound
	}
	m.entries[key] = e
	return nil
}

// All implements Store. An empty locale returns every entry; otherwise
// locale-specific entries plus the locale-agnostic ones.
func (m *MemStore) All(locale string) ([]Entry, error) {
	locale = NormLocale(locale)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for key, e := range m.entries {
		if locale == "" || key.locale == locale || key.locale == "" {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Word != out[j].Word {
			return out[i].Word < out[j].Word
		}
		return out[i].Locale < out[j].Locale
	})
	return out, nil
}
