package editor

// Unit selects the granularity of a delete or selection-adjust operation.
type Unit int

const (
	// UnitCharacters operates on grapheme clusters.
	UnitCharacters Unit = iota
	// UnitWords operates on word segments including adjoining whitespace.
	UnitWords
)

// String implements fmt.Stringer.
func (u Unit) String() string {
	switch u {
	case UnitCharacters:
		return "characters"
	case UnitWords:
		return "words"
	default:
		return "unknown"
	}
}

// Scope selects which side of the cursor an operation acts on.
type Scope int

const (
	// ScopeBeforeCursor acts on text preceding the selection start.
	ScopeBeforeCursor Scope = iota
	// ScopeAfterCursor acts on text following the selection end.
	ScopeAfterCursor
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	switch s {
	case ScopeBeforeCursor:
		return "before-cursor"
	case ScopeAfterCursor:
		return "after-cursor"
	default:
		return "unknown"
	}
}
