package dict

import (
	"bufio"
	"bytes"
	"embed"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed wordlist_en.txt
var wordlistFS embed.FS

// StaticDict is the read-only embedded wordlist. Lookups are
// case-insensitive; autosave consults it so common words never clutter the
// user dictionary.
type StaticDict struct {
	words   map[string]int
	ordered []string
}

var (
	staticOnce sync.Once
	staticDict *StaticDict
)

// NewStaticDict returns the embedded English wordlist. The list is parsed
// once and shared.
func NewStaticDict() *StaticDict {
	staticOnce.Do(func() {
		data, err := wordlistFS.ReadFile("wordlist_en.txt")
		if err != nil {
			staticDict = newStatic(map[string]int{})
			return
		}
		staticDict = parseWordlist(data)
	})
	return staticDict
}

func newStatic(words map[string]int) *StaticDict {
	ordered := make([]string, 0, len(words))
	for w := range words {
		ordered = append(ordered, w)
	}
	sort.Slice(ordered, func(i, j int) bool {
		fi, fj := words[ordered[i]], words[ordered[j]]
		if fi != fj {
			return fi > fj
		}
		return ordered[i] < ordered[j]
	})
	return &StaticDict{words: words, ordered: ordered}
}

func parseWordlist(data []byte) *StaticDict {
	words := make(map[string]int)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, freqStr, found := strings.Cut(line, " ")
		freq := FrequencyDefault
		if found {
			if f, err := strconv.Atoi(strings.TrimSpace(freqStr)); err == nil {
				freq = ClampFrequency(f)
			}
		}
		words[strings.ToLower(word)] = freq
	}
	return newStatic(words)
}

// Contains reports whether word is in the list, ignoring case.
func (d *StaticDict) Contains(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Frequency returns the word's frequency and whether it is listed.
func (d *StaticDict) Frequency(word string) (int, bool) {
	f, ok := d.words[strings.ToLower(word)]
	return f, ok
}

// Len returns the number of listed words.
func (d *StaticDict) Len() int {
	return len(d.words)
}

// Words returns all listed words, most frequent first.
func (d *StaticDict) Words() []string {
	out := make([]string, len(d.ordered))
	copy(out, d.ordered)
	return out
}
