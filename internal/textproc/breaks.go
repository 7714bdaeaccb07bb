// Package textproc provides the text measurement primitives the editor
// needs to translate character- and word-unit operations into rune counts:
// grapheme-cluster and word boundary iteration (UAX #29), current-word
// detection, and capitalization context.
//
// All measurements are returned in runes because the host channel counts
// runes in DeleteSurrounding and selection ranges.
package textproc

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MeasureLastUChars returns the number of runes spanned by the last n
// grapheme clusters of text. Shorter text yields the full rune count.
func MeasureLastUChars(text string, n int) int {
	if n <= 0 || text == "" {
		return 0
	}
	lengths := clusterLengths(text)
	if n > len(lengths) {
		n = len(lengths)
	}
	total := 0
	for i := len(lengths) - n; i < len(lengths); i++ {
		total += lengths[i]
	}
	return total
}

// MeasureNextUChars returns the number of runes spanned by the first n
// grapheme clusters of text.
func MeasureNextUChars(text string, n int) int {
	if n <= 0 || text == "" {
		return 0
	}
	total := 0
	state := -1
	var cluster string
	rest := text
	for i := 0; i < n && rest != ""; i++ {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		total += utf8.RuneCountInString(cluster)
	}
	return total
}

// MeasureLastUWords returns the number of runes spanned by the last n words
// of text, including the whitespace separating them from the cursor. This is
// the unit a word-wise backward delete removes: trailing whitespace first,
// then the word itself, n times.
func MeasureLastUWords(text string, n int) int {
	if n <= 0 || text == "" {
		return 0
	}
	segs := wordSegments(text)
	total := 0
	idx := len(segs) - 1
	for i := 0; i < n && idx >= 0; i++ {
		for idx >= 0 && isSpaceSegment(segs[idx]) {
			total += utf8.RuneCountInString(segs[idx])
			idx--
		}
		if idx >= 0 {
			total += utf8.RuneCountInString(segs[idx])
			idx--
		}
	}
	return total
}

// MeasureNextUWords returns the number of runes spanned by the first n words
// of text, including the whitespace separating them from the cursor.
func MeasureNextUWords(text string, n int) int {
	if n <= 0 || text == "" {
		return 0
	}
	segs := wordSegments(text)
	total := 0
	idx := 0
	for i := 0; i < n && idx < len(segs); i++ {
		for idx < len(segs) && isSpaceSegment(segs[idx]) {
			total += utf8.RuneCountInString(segs[idx])
			idx++
		}
		if idx < len(segs) {
			total += utf8.RuneCountInString(segs[idx])
			idx++
		}
	}
	return total
}

// clusterLengths returns the rune length of every grapheme cluster in text.
func clusterLengths(text string) []int {
	lengths := make([]int, 0, len(text))
	state := -1
	var cluster string
	rest := text
	for rest != "" {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		lengths = append(lengths, utf8.RuneCountInString(cluster))
	}
	return lengths
}

// wordSegments splits text into UAX #29 word segments. Whitespace runs are
// segments of their own.
func wordSegments(text string) []string {
	segs := make([]string, 0, 16)
	state := -1
	var word string
	rest := text
	for rest != "" {
		word, rest, state = uniseg.FirstWordInString(rest, state)
		segs = append(segs, word)
	}
	return segs
}

// isSpaceSegment returns true if the segment consists of whitespace only.
func isSpaceSegment(seg string) bool {
	for _, r := range seg {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return seg != ""
}
