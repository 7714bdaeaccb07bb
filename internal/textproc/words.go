package textproc

import (
	"unicode"
)

// LastWordWindow is how far back LastWord looks for a whitespace boundary.
// Host fields can hold megabytes; the word being finished never needs more
// context than this.
const LastWordWindow = 100

// LastWord extracts the token between the last whitespace and the cursor.
// Only the last LastWordWindow runes of textBefore are considered. Returns
// "" when whitespace sits directly before the cursor: the word there is
// already finished, and a trailing auto-space must not offer the text
// before it again.
func LastWord(textBefore string) string {
	runes := []rune(textBefore)
	if len(runes) > LastWordWindow {
		runes = runes[len(runes)-LastWordWindow:]
	}
	start := len(runes)
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	return string(runes[start:])
}

// IsSaveableWord reports whether a token extracted by LastWord qualifies for
// the user dictionary: longer than one rune and containing at least one
// letter. Pure numbers and lone symbols never qualify.
func IsSaveableWord(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// WordSpan locates the word the cursor touches. It returns how many runes
// the word extends behind and ahead of the cursor. ok is false when the
// cursor touches no word character on either side.
//
// A cursor inside "hel|lo" yields (3, 2, true); a cursor at "hello| world"
// yields (5, 0, true); a cursor surrounded by spaces yields ok=false.
func WordSpan(textBefore, textAfter string) (back, ahead int, ok bool) {
	before := []rune(textBefore)
	after := []rune(textAfter)
	b := len(before)
	for b > 0 && isWordRune(before[b-1]) {
		b--
	}
	a := 0
	for a < len(after) && isWordRune(after[a]) {
		a++
	}
	back = len(before) - b
	ahead = a
	ok = back > 0 || ahead > 0
	return back, ahead, ok
}

// isWordRune reports whether r belongs to a word for selection purposes.
// Apostrophes and hyphens join word parts so "don't" and "e-mail" select
// as one unit.
func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
		return true
	}
	switch r {
	case '\'', '’', '-', '_':
		return true
	}
	return false
}
