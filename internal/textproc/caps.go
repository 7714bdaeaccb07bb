package textproc

import "unicode"

// CapsContext describes what the text before the cursor suggests about
// capitalization of the next character.
type CapsContext int

const (
	// CapsNone means the next character continues a word or sentence.
	CapsNone CapsContext = iota
	// CapsSentence means the cursor sits at the start of the field, after a
	// newline, or after a sentence terminator plus whitespace.
	CapsSentence
)

// sentence terminators that request capitalization of the following word.
const sentenceTerminators = ".!?…"

// CapsContextBefore classifies the text preceding the cursor. Hosts that
// request auto-capitalization shift the layout when this returns
// CapsSentence.
func CapsContextBefore(textBefore string) CapsContext {
	runes := []rune(textBefore)
	i := len(runes)
	if i == 0 {
		return CapsSentence
	}
	if runes[i-1] == '\n' {
		return CapsSentence
	}
	seenSpace := false
	for i > 0 && runes[i-1] == ' ' {
		seenSpace = true
		i--
	}
	if i == 0 {
		return CapsSentence
	}
	if !seenSpace {
		return CapsNone
	}
	if isSentenceTerminator(runes[i-1]) {
		return CapsSentence
	}
	return CapsNone
}

func isSentenceTerminator(r rune) bool {
	for _, t := range sentenceTerminators {
		if r == t {
			return true
		}
	}
	return false
}

// HasLetterBefore reports whether the rune directly before the cursor is a
// letter. Auto-space suppression uses the digit variant; the shift state
// machine asks for letters when deciding whether a manual shift should
// stick.
func HasLetterBefore(textBefore string) bool {
	runes := []rune(textBefore)
	if len(runes) == 0 {
		return false
	}
	return unicode.IsLetter(runes[len(runes)-1])
}

// HasDigitBefore reports whether the rune directly before the cursor is a
// digit. "3.5" must not become "3. 5", so auto-space checks this before
// inserting.
func HasDigitBefore(textBefore string) bool {
	runes := []rune(textBefore)
	if len(runes) == 0 {
		return false
	}
	return unicode.IsDigit(runes[len(runes)-1])
}
