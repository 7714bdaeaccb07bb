package suggest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/dshills/keybridge/internal/dict"
)

// Curated corrections applied with high confidence. Everything else the
// provider offers comes from fuzzy dictionary matches scored below the
// auto-commit threshold.
var commonTypos = map[string]string{
	"teh":        "the",
	"adn":        "and",
	"nad":        "and",
	"taht":       "that",
	"waht":       "what",
	"wich":       "which",
	"thier":      "their",
	"recieve":    "receive",
	"seperate":   "separate",
	"definately": "definitely",
	"wierd":      "weird",
	"freind":     "friend",
	"becuase":    "because",
	"woudl":      "would",
	"shoudl":     "should",
	"dont":       "don't",
	"doesnt":     "doesn't",
	"cant":       "can't",
	"wont":       "won't",
	"im":         "I'm",
	"ive":        "I've",
}

const (
	typoConfidence = 0.95

	// Fuzzy static-dictionary matches scale up to 0.9 and therefore never
	// pass a strict greater-than auto-commit gate on their own.
	staticFuzzyBase = 0.6
	staticFuzzySpan = 0.3

	// User-dictionary fuzzy matches score high but carry
	// SourceUserDictionary, which the dispatcher bars from auto-commit.
	userFuzzyBase = 0.85
	userFuzzySpan = 0.1
)

// TypoProvider is the built-in Provider: a curated typo table plus
// one-edit fuzzy matching over the static wordlist and a cached snapshot of
// the user dictionary. Observe feeds it the word at the cursor; the word and
// user-word cache are atomics because observation and refresh arrive on
// different goroutines than the dispatch-path query.
type TypoProvider struct {
	static *dict.StaticDict
	store  dict.Store

	locale atomic.Pointer[string]
	word   atomic.Pointer[string]
	users  atomic.Pointer[[]dict.Entry]

	mu      sync.Mutex
	demoted map[string]struct{}
}

// NewTypoProvider builds a provider over the static wordlist and the user
// dictionary. store may be nil for a static-only provider.
func NewTypoProvider(static *dict.StaticDict, store dict.Store) *TypoProvider {
	p := &TypoProvider{
		static:  static,
		store:   store,
		demoted: make(map[string]struct{}),
	}
	empty := ""
	p.locale.Store(&empty)
	p.word.Store(&empty)
	return p
}

// SetLocale switches the locale used for user-dictionary lookups.
func (p *TypoProvider) SetLocale(locale string) {
	l := dict.NormLocale(locale)
	p.locale.Store(&l)
}

// Observe records the word currently at the cursor.
func (p *TypoProvider) Observe(word string) {
	p.word.Store(&word)
}

// RefreshUserWords reloads the cached user-dictionary snapshot. Called from
// the background worker after autosave, never from the dispatch path.
func (p *TypoProvider) RefreshUserWords(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := p.store.All(*p.locale.Load())
	if err != nil {
		return err
	}
	p.users.Store(&entries)
	return nil
}

// AutoCommitCandidate implements Provider for the word last observed.
func (p *TypoProvider) AutoCommitCandidate() *Candidate {
	word := *p.word.Load()
	if word == "" {
		return nil
	}
	lower := strings.ToLower(word)

	if fix, ok := commonTypos[lower]; ok {
		return p.offer(Candidate{
			Text:                    matchCase(word, fix),
			Confidence:              typoConfidence,
			IsEligibleForAutoCommit: true,
			Source:                  SourceTypo,
		})
	}

	// A word either dictionary already knows needs no correcting.
	if p.static != nil && p.static.Contains(word) {
		return nil
	}
	users := p.userEntries()
	for _, e := range users {
		if strings.EqualFold(e.Word, word) {
			return nil
		}
	}

	if best := bestWithinOneEdit(lower, users); best != nil {
		span := float64(dict.ClampFrequency(best.Frequency)) / dict.FrequencyMax
		return p.offer(Candidate{
			Text:                    matchCase(word, best.Word),
			Confidence:              userFuzzyBase + span*userFuzzySpan,
			IsEligibleForAutoCommit: true,
			Source:                  SourceUserDictionary,
		})
	}

	if p.static != nil {
		if fix, freq, ok := p.bestStaticWithinOneEdit(lower); ok {
			span := float64(freq) / dict.FrequencyMax
			return p.offer(Candidate{
				Text:                    matchCase(word, fix),
				Confidence:              staticFuzzyBase + span*staticFuzzySpan,
				IsEligibleForAutoCommit: true,
				Source:                  SourceTypo,
			})
		}
	}
	return nil
}

// NotifyCandidateReverted implements Provider: a correction the user undid
// is never offered again this session.
func (p *TypoProvider) NotifyCandidateReverted(c Candidate) {
	p.mu.Lock()
	p.demoted[strings.ToLower(c.Text)] = struct{}{}
	p.mu.Unlock()
}

func (p *TypoProvider) offer(c Candidate) *Candidate {
	p.mu.Lock()
	_, demoted := p.demoted[strings.ToLower(c.Text)]
	p.mu.Unlock()
	if demoted {
		return nil
	}
	return &c
}

func (p *TypoProvider) userEntries() []dict.Entry {
	if entries := p.users.Load(); entries != nil {
		return *entries
	}
	return nil
}

func bestWithinOneEdit(lower string, entries []dict.Entry) *dict.Entry {
	var best *dict.Entry
	for i := range entries {
		e := &entries[i]
		if !withinOneEdit(lower, strings.ToLower(e.Word)) {
			continue
		}
		if best == nil || e.Frequency > best.Frequency {
			best = e
		}
	}
	return best
}

// bestStaticWithinOneEdit scans the frequency-ordered wordlist, so the first
// hit is the best one.
func (p *TypoProvider) bestStaticWithinOneEdit(lower string) (string, int, bool) {
	for _, w := range p.static.Words() {
		if withinOneEdit(lower, w) {
			f, _ := p.static.Frequency(w)
			return w, f, true
		}
	}
	return "", 0, false
}

// withinOneEdit reports whether b is reachable from a by one substitution,
// insertion, deletion, or adjacent transposition. Equal strings do not
// count.
func withinOneEdit(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la < lb {
		ra, rb = rb, ra
		la, lb = lb, la
	}
	if la-lb > 1 || la == 0 {
		return false
	}
	// Same length: one substitution or one adjacent transposition.
	if la == lb {
		diff := -1
		for i := range ra {
			if ra[i] != rb[i] {
				if diff >= 0 {
					// Exactly one transposition spanning positions diff, i.
					if i == diff+1 && ra[diff] == rb[i] && ra[i] == rb[diff] {
						return equalFrom(ra, rb, i+1)
					}
					return false
				}
				diff = i
			}
		}
		return diff >= 0
	}
	// Length differs by one: one deletion from the longer string.
	for i := range ra {
		if i >= lb || ra[i] != rb[i] {
			return equalRunes(ra[i+1:], rb[i:])
		}
	}
	return true
}

func equalFrom(a, b []rune, start int) bool {
	return equalRunes(a[start:], b[start:])
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// matchCase shapes the correction like the typed word: leading capital or
// all-caps carries over, anything else keeps the correction's own casing.
func matchCase(typed, fix string) string {
	tr, fr := []rune(typed), []rune(fix)
	if len(tr) == 0 || len(fr) == 0 {
		return fix
	}
	if isAllUpper(tr) && len(tr) > 1 {
		return strings.ToUpper(fix)
	}
	if unicode.IsUpper(tr[0]) && !unicode.IsUpper(fr[0]) {
		fr[0] = unicode.ToUpper(fr[0])
		return string(fr)
	}
	return fix
}

func isAllUpper(rs []rune) bool {
	for _, r := range rs {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
