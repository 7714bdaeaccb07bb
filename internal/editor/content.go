package editor

import (
	"strings"

	"github.com/dshills/keybridge/internal/textproc"
)

// Content is an immutable snapshot of what the host last reported about the
// focused field: the text split around the selection, plus the composing
// region. A fresh Content replaces the previous one wholesale on every host
// update; nothing mutates one in place.
type Content struct {
	// Selection is the reported selection, normalized and clamped.
	Selection Range
	// Composing is the IME-owned provisional span, RangeUnspecified when
	// none. When valid it lies within the text bounds.
	Composing Range
	// TextBefore is the text preceding the selection start.
	TextBefore string
	// TextSelected is the text covered by the selection.
	TextSelected string
	// TextAfter is the text following the selection end.
	TextAfter string
}

// EmptyContent is the snapshot used before the host has reported anything.
// Its unspecified selection makes every mutating operation a no-op.
func EmptyContent() Content {
	return Content{Selection: RangeUnspecified, Composing: RangeUnspecified}
}

// NewContent splits text around the given selection. Out-of-bounds ranges
// are clamped; a composing range that is invalid or escapes the text span
// is dropped to RangeUnspecified.
func NewContent(text string, selection, composing Range) Content {
	runes := []rune(text)
	total := len(runes)
	sel := selection.Clamped(0, total)
	if !sel.IsValid() {
		return Content{Selection: RangeUnspecified, Composing: RangeUnspecified}
	}
	comp := RangeUnspecified
	if composing.IsValid() {
		c := composing.Clamped(0, total)
		if c.IsValid() {
			comp = c
		}
	}
	return Content{
		Selection:    sel,
		Composing:    comp,
		TextBefore:   string(runes[:sel.Start]),
		TextSelected: string(runes[sel.Start:sel.End]),
		TextAfter:    string(runes[sel.End:]),
	}
}

// Text returns the full field text.
func (c Content) Text() string {
	return c.TextBefore + c.TextSelected + c.TextAfter
}

// Len returns the full field length in runes.
func (c Content) Len() int {
	return len([]rune(c.TextBefore)) + len([]rune(c.TextSelected)) + len([]rune(c.TextAfter))
}

// SelectedText returns the text covered by the selection.
func (c Content) SelectedText() string {
	return c.TextSelected
}

// CharBeforeCursor returns the rune directly before the selection start.
func (c Content) CharBeforeCursor() (rune, bool) {
	runes := []rune(c.TextBefore)
	if len(runes) == 0 {
		return 0, false
	}
	return runes[len(runes)-1], true
}

// CharsBeforeCursor returns up to n runes preceding the selection start,
// nearest last.
func (c Content) CharsBeforeCursor(n int) []rune {
	runes := []rune(c.TextBefore)
	if n > len(runes) {
		n = len(runes)
	}
	return runes[len(runes)-n:]
}

// CharAfterCursor returns the rune directly after the selection end.
func (c Content) CharAfterCursor() (rune, bool) {
	runes := []rune(c.TextAfter)
	if len(runes) == 0 {
		return 0, false
	}
	return runes[0], true
}

// CurrentWordRange locates the word the cursor touches. Only meaningful for
// a collapsed cursor; a non-empty selection reports no word.
func (c Content) CurrentWordRange() (Range, bool) {
	if !c.Selection.IsCursor() {
		return RangeUnspecified, false
	}
	back, ahead, ok := textproc.WordSpan(c.TextBefore, c.TextAfter)
	if !ok {
		return RangeUnspecified, false
	}
	return Range{Start: c.Selection.Start - back, End: c.Selection.End + ahead}, true
}

// CurrentWord returns the text of the word the cursor touches.
func (c Content) CurrentWord() (string, bool) {
	r, ok := c.CurrentWordRange()
	if !ok {
		return "", false
	}
	runes := []rune(c.Text())
	return string(runes[r.Start:r.End]), true
}

// CurrentLine returns the line containing the selection, without its
// terminating newline.
func (c Content) CurrentLine() string {
	before := c.TextBefore
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	after := c.TextAfter
	if i := strings.IndexByte(after, '\n'); i >= 0 {
		after = after[:i]
	}
	return before + c.TextSelected + after
}
