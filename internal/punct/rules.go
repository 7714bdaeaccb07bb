// Package punct provides per-locale punctuation spacing rules: which symbols
// call for a conventional space before or after them, and which symbols may
// sit on either side of a phantom space.
package punct

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Rules holds the punctuation spacing configuration for one locale.
type Rules struct {
	// Locale is the BCP-47 tag these rules apply to.
	Locale language.Tag

	// SymbolsPrecedingAutoSpace are symbols that are conventionally followed
	// by a space (the symbol precedes the space): sentence punctuation,
	// closing brackets.
	SymbolsPrecedingAutoSpace string

	// SymbolsFollowingAutoSpace are symbols that are conventionally preceded
	// by a space (the symbol follows the space): opening brackets, opening
	// quotation marks.
	SymbolsFollowingAutoSpace string

	// SymbolsPrecedingPhantomSpace are symbols allowed immediately before a
	// phantom space, in addition to letters and digits.
	SymbolsPrecedingPhantomSpace string

	// SymbolsFollowingPhantomSpace are symbols allowed immediately after a
	// phantom space, in addition to letters and digits.
	SymbolsFollowingPhantomSpace string

	// EnableAutoSpace reports whether the locale uses spaces between words
	// at all. No-space scripts disable both auto and phantom spacing.
	EnableAutoSpace bool
}

// WantsSpaceAfter returns true if the symbol is conventionally followed by a
// space in this locale.
func (r Rules) WantsSpaceAfter(ch rune) bool {
	return r.EnableAutoSpace && strings.ContainsRune(r.SymbolsPrecedingAutoSpace, ch)
}

// WantsSpaceBefore returns true if the symbol is conventionally preceded by a
// space in this locale.
func (r Rules) WantsSpaceBefore(ch rune) bool {
	return r.EnableAutoSpace && strings.ContainsRune(r.SymbolsFollowingAutoSpace, ch)
}

// AllowsPhantomBefore returns true if ch may sit immediately before a phantom
// space. Letters and digits always qualify.
func (r Rules) AllowsPhantomBefore(ch rune) bool {
	if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
		return true
	}
	return strings.ContainsRune(r.SymbolsPrecedingPhantomSpace, ch)
}

// AllowsPhantomAfter returns true if ch may sit immediately after a phantom
// space. Letters and digits always qualify.
func (r Rules) AllowsPhantomAfter(ch rune) bool {
	if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
		return true
	}
	return strings.ContainsRune(r.SymbolsFollowingPhantomSpace, ch)
}

// builtin holds the shipped rule sets. The first entry is the fallback.
var builtin = []Rules{
	{
		Locale:                       language.Und,
		SymbolsPrecedingAutoSpace:    ".,;:!?)]}…",
		SymbolsFollowingAutoSpace:    "([{",
		SymbolsPrecedingPhantomSpace: ".,;:!?)]}\"'…",
		SymbolsFollowingPhantomSpace: "\"'([{#@&",
		EnableAutoSpace:              true,
	},
	{
		Locale:                       language.English,
		SymbolsPrecedingAutoSpace:    ".,;:!?)]}…",
		SymbolsFollowingAutoSpace:    "([{",
		SymbolsPrecedingPhantomSpace: ".,;:!?)]}\"'…",
		SymbolsFollowingPhantomSpace: "\"'([{#@&",
		EnableAutoSpace:              true,
	},
	{
		Locale:                       language.French,
		SymbolsPrecedingAutoSpace:    ".,)]}…»",
		SymbolsFollowingAutoSpace:    "([{«!?;:",
		SymbolsPrecedingPhantomSpace: ".,;:!?)]}»…",
		SymbolsFollowingPhantomSpace: "([{«",
		EnableAutoSpace:              true,
	},
	{
		Locale:                       language.Spanish,
		SymbolsPrecedingAutoSpace:    ".,;:!?)]}…",
		SymbolsFollowingAutoSpace:    "([{¿¡",
		SymbolsPrecedingPhantomSpace: ".,;:!?)]}…",
		SymbolsFollowingPhantomSpace: "([{¿¡\"'",
		EnableAutoSpace:              true,
	},
	{
		Locale:          language.Japanese,
		EnableAutoSpace: false,
	},
	{
		Locale:          language.Chinese,
		EnableAutoSpace: false,
	},
	{
		Locale:          language.Thai,
		EnableAutoSpace: false,
	},
}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, len(builtin))
	for i, r := range builtin {
		tags[i] = r.Locale
	}
	matcher = language.NewMatcher(tags)
}

// Default returns the fallback rule set.
func Default() Rules {
	return builtin[0]
}

// For returns the rule set best matching the given locale.
// Unrecognized locales fall back to the default rules.
func For(tag language.Tag) Rules {
	_, index, conf := matcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	r := builtin[index]
	// Keep the caller's tag so rule consumers can report the locale they
	// matched for, not the canonical builtin one.
	if tag != language.Und {
		r.Locale = tag
	}
	return r
}

// Supported returns the locales with shipped rule sets.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(builtin))
	for i, r := range builtin {
		tags[i] = r.Locale
	}
	return tags
}
