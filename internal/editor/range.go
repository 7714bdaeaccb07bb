package editor

import "fmt"

// Range marks a span of field text in rune offsets. Start <= End for a
// valid range; a cursor is a zero-length range. The host update protocol
// counts runes, so all offsets here are rune offsets, never bytes.
type Range struct {
	Start int
	End   int
}

// RangeUnspecified is the sentinel the host sends when it cannot report a
// range, and the zero value for "no composing region".
var RangeUnspecified = Range{Start: -1, End: -1}

// NewRange builds a normalized range from two offsets in either order.
func NewRange(a, b int) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Cursor returns a zero-length range at pos.
func Cursor(pos int) Range {
	return Range{Start: pos, End: pos}
}

// IsValid reports whether the range holds usable offsets.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.End >= 0 && r.Start <= r.End
}

// IsCursor reports whether the range is a collapsed cursor.
func (r Range) IsCursor() bool {
	return r.IsValid() && r.Start == r.End
}

// Len returns the number of runes the range spans.
func (r Range) Len() int {
	if !r.IsValid() {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether other lies fully inside r.
func (r Range) Contains(other Range) bool {
	return r.IsValid() && other.IsValid() && other.Start >= r.Start && other.End <= r.End
}

// Clamped constrains the range to [min, max]. Invalid ranges stay invalid;
// ranges are clamped, never rejected.
func (r Range) Clamped(min, max int) Range {
	if !r.IsValid() {
		return RangeUnspecified
	}
	if r.Start < min {
		r.Start = min
	}
	if r.End < min {
		r.End = min
	}
	if r.Start > max {
		r.Start = max
	}
	if r.End > max {
		r.End = max
	}
	return r
}

// Translated shifts both offsets by delta.
func (r Range) Translated(delta int) Range {
	if !r.IsValid() {
		return RangeUnspecified
	}
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// String implements fmt.Stringer.
func (r Range) String() string {
	if !r.IsValid() {
		return "range(unspecified)"
	}
	return fmt.Sprintf("range(%d,%d)", r.Start, r.End)
}
