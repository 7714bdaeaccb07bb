package editor

// Connection is the host channel an Instance drives. Every call is
// fire-and-forget: a true result means the host accepted the edit, not that
// it has been applied. Effects surface later through the update callback,
// zero, one, or occasionally several times per edit.
//
// All counts and offsets are runes.
type Connection interface {
	// BeginBatchEdit suppresses echoes until the matching EndBatchEdit,
	// so a compound edit surfaces as one update. Nestable.
	BeginBatchEdit() bool
	// EndBatchEdit closes a batch. Closing the outermost batch releases
	// at most one coalesced update.
	EndBatchEdit() bool
	// SetSelection moves the selection or cursor.
	SetSelection(r Range) bool
	// CommitText replaces the composing region if one is set, otherwise
	// the selection, with text, collapsing the cursor after it.
	CommitText(text string) bool
	// DeleteSurrounding removes before runes ahead of the selection start
	// and after runes behind the selection end.
	DeleteSurrounding(before, after int) bool
	// SetComposingRegion marks committed text as the provisional
	// IME-owned span. It never changes text.
	SetComposingRegion(r Range) bool
	// FinishComposing clears the composing region, keeping its text.
	FinishComposing() bool
	// IsRaw reports that the field lacks rich-editing semantics. Rich
	// operations short-circuit to false on raw fields.
	IsRaw() bool
}

// Options are the editor-level preferences an Instance consults. A copy is
// applied atomically via ApplyOptions, so a live config reload never tears
// a keystroke.
type Options struct {
	// PhantomWordDelete escalates a single-char backward delete to a
	// word delete while a phantom-space completion is pending.
	PhantomWordDelete bool
	// MarkComposingWord keeps the word around the cursor marked as the
	// composing region, so completions finalize in place.
	MarkComposingWord bool
}

// DefaultOptions mirror the stock keyboard behavior.
func DefaultOptions() Options {
	return Options{
		PhantomWordDelete: true,
		MarkComposingWord: true,
	}
}

// NoticeFunc surfaces a non-fatal, user-visible notice (empty clipboard,
// unreachable dictionary). Never interrupts the keystroke pipeline.
type NoticeFunc func(message string)
