// Package gesture keeps the word data a swipe decoder ranks candidate paths
// against. Decoding itself happens host-side; this side's job is keeping the
// list current as the user dictionary grows, so freshly autosaved words
// become swipeable.
package gesture

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dshills/keybridge/internal/dict"
)

// WordData is one immutable snapshot of the ranked word list.
type WordData struct {
	Words       []string
	GeneratedAt time.Time
}

// Classifier merges the static wordlist with the user dictionary into
// frequency-ranked snapshots. Refresh runs on the autosave worker; readers
// take the snapshot pointer without locking.
type Classifier struct {
	static *dict.StaticDict
	store  dict.Store

	locale    atomic.Pointer[string]
	data      atomic.Pointer[WordData]
	refreshes atomic.Uint64
}

// NewClassifier builds a classifier over the static wordlist and the user
// dictionary. store may be nil.
func NewClassifier(static *dict.StaticDict, store dict.Store) *Classifier {
	c := &Classifier{static: static, store: store}
	empty := ""
	c.locale.Store(&empty)
	return c
}

// SetLocale switches the locale used for user-dictionary reads. Takes
// effect on the next refresh.
func (c *Classifier) SetLocale(locale string) {
	l := dict.NormLocale(locale)
	c.locale.Store(&l)
}

// RefreshWordData rebuilds the ranked snapshot from both dictionaries.
func (c *Classifier) RefreshWordData(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	freqs := make(map[string]int)
	if c.static != nil {
		for _, w := range c.static.Words() {
			f, _ := c.static.Frequency(w)
			freqs[w] = f
		}
	}
	if c.store != nil {
		entries, err := c.store.All(*c.locale.Load())
		if err != nil {
			return err
		}
		for _, e := range entries {
			w := strings.ToLower(e.Word)
			if e.Frequency > freqs[w] {
				freqs[w] = e.Frequency
			}
		}
	}

	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		fi, fj := freqs[words[i]], freqs[words[j]]
		if fi != fj {
			return fi > fj
		}
		return words[i] < words[j]
	})

	c.data.Store(&WordData{Words: words, GeneratedAt: time.Now()})
	c.refreshes.Add(1)
	return nil
}

// WordData returns the latest snapshot, zero before the first refresh.
func (c *Classifier) WordData() WordData {
	if d := c.data.Load(); d != nil {
		return *d
	}
	return WordData{}
}

// Refreshes reports how many refreshes have completed.
func (c *Classifier) Refreshes() uint64 {
	return c.refreshes.Load()
}
