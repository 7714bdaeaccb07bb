package host

import (
	"sync"

	"github.com/dshills/keybridge/internal/editor"
)

// EchoMode selects how a MemoryField reports edits back.
type EchoMode int

const (
	// EchoImmediate publishes one update per edit (or per batch), inline.
	EchoImmediate EchoMode = iota
	// EchoDelayed queues updates until Flush, modeling the gap between an
	// edit and its echo.
	EchoDelayed
	// EchoCoalescing queues updates but keeps only the newest, so a burst
	// of edits surfaces as a single echo on Flush.
	EchoCoalescing
	// EchoDuplicate publishes every update twice, modeling hosts that
	// re-report unchanged state.
	EchoDuplicate
	// EchoSilent never publishes, modeling a host that drops echoes.
	EchoSilent
)

// MemoryField is an in-process text field implementing editor.Connection.
// Edits mutate its rune buffer under a lock; echoes go out through the hub
// according to the configured mode. It is the official test double for the
// delayed-echo protocol and the buffer behind the playground.
type MemoryField struct {
	mu        sync.Mutex
	text      []rune
	selection editor.Range
	composing editor.Range
	raw       bool
	mode      EchoMode
	batch     int
	dirty     bool
	outbox    []Update
	pending   []Update
	hub       *UpdateHub
}

// NewMemoryField creates an empty field that echoes immediately through hub.
func NewMemoryField(hub *UpdateHub) *MemoryField {
	return &MemoryField{
		selection: editor.Cursor(0),
		composing: editor.RangeUnspecified,
		hub:       hub,
	}
}

// SetEchoMode switches the echo schedule. Pending delayed updates survive
// the switch until flushed.
func (f *MemoryField) SetEchoMode(mode EchoMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
}

// SetRaw marks the field as lacking rich-editing semantics.
func (f *MemoryField) SetRaw(raw bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = raw
}

// SetText replaces the field content from outside the IME, like another
// process writing the field, and echoes the change.
func (f *MemoryField) SetText(text string) {
	f.mu.Lock()
	f.text = []rune(text)
	f.selection = editor.Cursor(len(f.text))
	f.composing = editor.RangeUnspecified
	f.markDirtyLocked()
	pub := f.takeOutboxLocked()
	f.mu.Unlock()
	f.publish(pub)
}

// Text returns the current field content.
func (f *MemoryField) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.text)
}

// Snapshot returns the current state as an Update without publishing it.
func (f *MemoryField) Snapshot() Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Flush publishes updates held back by the delayed and coalescing modes, in
// order.
func (f *MemoryField) Flush() {
	f.mu.Lock()
	pub := f.pending
	f.pending = nil
	f.mu.Unlock()
	f.publish(pub)
}

// PendingEchoes reports how many updates Flush would publish.
func (f *MemoryField) PendingEchoes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// BeginBatchEdit implements editor.Connection.
func (f *MemoryField) BeginBatchEdit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batch++
	return true
}

// EndBatchEdit implements editor.Connection. Closing the outermost batch
// releases at most one coalesced echo.
func (f *MemoryField) EndBatchEdit() bool {
	f.mu.Lock()
	if f.batch > 0 {
		f.batch--
	}
	var pub []Update
	if f.batch == 0 && f.dirty {
		f.dirty = false
		f.enqueueLocked()
		pub = f.takeOutboxLocked()
	}
	f.mu.Unlock()
	f.publish(pub)
	return true
}

// SetSelection implements editor.Connection.
func (f *MemoryField) SetSelection(r editor.Range) bool {
	f.mu.Lock()
	if f.raw {
		f.mu.Unlock()
		return false
	}
	r = r.Clamped(0, len(f.text))
	if !r.IsValid() {
		f.mu.Unlock()
		return false
	}
	f.selection = r
	f.markDirtyLocked()
	pub := f.takeOutboxLocked()
	f.mu.Unlock()
	f.publish(pub)
	return true
}

// CommitText implements editor.Connection: text replaces the composing
// region when one is set, otherwise the selection, and the cursor collapses
// after it.
func (f *MemoryField) CommitText(text string) bool {
	f.mu.Lock()
	if f.raw {
		f.mu.Unlock()
		return false
	}
	target := f.selection
	if f.composing.IsValid() {
		target = f.composing
	}
	ins := []rune(text)
	out := make([]rune, 0, len(f.text)+len(ins))
	out = append(out, f.text[:target.Start]...)
	out = append(out, ins...)
	out = append(out, f.text[target.End:]...)
	f.text = out
	f.selection = editor.Cursor(target.Start + len(ins))
	f.composing = editor.RangeUnspecified
	f.markDirtyLocked()
	pub := f.takeOutboxLocked()
	f.mu.Unlock()
	f.publish(pub)
	return true
}

// DeleteSurrounding implements editor.Connection.
func (f *MemoryField) DeleteSurrounding(before, after int) bool {
	f.mu.Lock()
	if f.raw {
		f.mu.Unlock()
		return false
	}
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	if before > f.selection.Start {
		before = f.selection.Start
	}
	if tail := len(f.text) - f.selection.End; after > tail {
		after = tail
	}
	out := make([]rune, 0, len(f.text))
	out = append(out, f.text[:f.selection.Start-before]...)
	out = append(out, f.text[f.selection.Start:f.selection.End]...)
	out = append(out, f.text[f.selection.End+after:]...)
	f.text = out
	f.selection = editor.Range{Start: f.selection.Start - before, End: f.selection.End - before}
	f.composing = editor.RangeUnspecified
	f.markDirtyLocked()
	pub := f.takeOutboxLocked()
	f.mu.Unlock()
	f.publish(pub)
	return true
}

// SetComposingRegion implements editor.Connection. Marking text never
// echoes; the region rides along with the next content update.
func (f *MemoryField) SetComposingRegion(r editor.Range) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raw {
		return false
	}
	f.composing = r.Clamped(0, len(f.text))
	return true
}

// FinishComposing implements editor.Connection.
func (f *MemoryField) FinishComposing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raw {
		return false
	}
	f.composing = editor.RangeUnspecified
	return true
}

// IsRaw implements editor.Connection.
func (f *MemoryField) IsRaw() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw
}

func (f *MemoryField) snapshotLocked() Update {
	return Update{
		Text:      string(f.text),
		Selection: f.selection,
		Composing: f.composing,
	}
}

// markDirtyLocked notes a content change; inside a batch it defers to
// EndBatchEdit, otherwise it enqueues per the echo mode.
func (f *MemoryField) markDirtyLocked() {
	if f.batch > 0 {
		f.dirty = true
		return
	}
	f.enqueueLocked()
}

// enqueueLocked routes one snapshot into the outbox or pending list.
func (f *MemoryField) enqueueLocked() {
	u := f.snapshotLocked()
	switch f.mode {
	case EchoImmediate:
		f.outbox = append(f.outbox, u)
	case EchoDuplicate:
		f.outbox = append(f.outbox, u, u)
	case EchoDelayed:
		f.pending = append(f.pending, u)
	case EchoCoalescing:
		f.pending = f.pending[:0]
		f.pending = append(f.pending, u)
	case EchoSilent:
	}
}

// takeOutboxLocked hands back updates that must publish now, clearing the
// outbox. Publishing happens outside the lock so a sync subscriber may call
// straight back into the field.
func (f *MemoryField) takeOutboxLocked() []Update {
	pub := f.outbox
	f.outbox = nil
	return pub
}

func (f *MemoryField) publish(updates []Update) {
	if f.hub == nil {
		return
	}
	for _, u := range updates {
		_ = f.hub.Publish(u)
	}
}
