package remote

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dshills/keybridge/internal/editor"
	"github.com/dshills/keybridge/internal/host"
)

// session is one websocket connection from a field. Writes are serialized
// per connection; gorilla conns tolerate one concurrent writer only.
type session struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *session) write(m Message) bool {
	data, err := json.Marshal(m)
	if err != nil {
		return false
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data) == nil
}

// Field is the bridge side of the host channel: an editor.Connection whose
// edits travel to whichever field session is currently attached, and whose
// echoes come back as contentUpdate frames published to the hub.
//
// With no session attached every operation reports false — the
// invalid-connection semantics the editor expects — so the editor can hold
// one Field across connects, disconnects, and focus changes.
type Field struct {
	hub *host.UpdateHub

	mu   sync.Mutex
	sess *session
	raw  bool
}

// NewField creates a detached field publishing echoes to hub.
func NewField(hub *host.UpdateHub) *Field {
	return &Field{hub: hub}
}

// Attached reports whether a field session is currently bound.
func (f *Field) Attached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess != nil
}

// SessionID returns the bound session's identifier, or "".
func (f *Field) SessionID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sess == nil {
		return ""
	}
	return f.sess.id
}

// attach binds a session, displacing any earlier one, and publishes the
// hello snapshot so the editor resyncs to the newly focused field.
func (f *Field) attach(sess *session, hello Message) {
	f.mu.Lock()
	prev := f.sess
	f.sess = sess
	f.raw = hello.Raw
	f.mu.Unlock()
	if prev != nil {
		_ = prev.conn.Close()
	}
	f.publishUpdate(hello)
}

// detach unbinds sess if it is still the bound session. A session displaced
// by a newer one detaches as a no-op.
func (f *Field) detach(sess *session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sess == sess {
		f.sess = nil
		f.raw = false
	}
}

// handle processes one field-ward frame.
func (f *Field) handle(m Message) {
	if m.Type == TypeContentUpdate {
		f.publishUpdate(m)
	}
}

func (f *Field) publishUpdate(m Message) {
	_ = f.hub.Publish(host.Update{
		Text:      m.Text,
		Selection: editor.Range{Start: m.SelStart, End: m.SelEnd},
		Composing: editor.Range{Start: m.CompStart, End: m.CompEnd},
	})
}

// send marshals one frame to the bound session. False with no session or a
// dead connection; the echo of whatever state the field really has arrives
// on the next contentUpdate either way.
func (f *Field) send(m Message) bool {
	f.mu.Lock()
	sess := f.sess
	f.mu.Unlock()
	if sess == nil {
		return false
	}
	return sess.write(m)
}

// BeginBatchEdit asks the field to coalesce echoes until EndBatchEdit.
func (f *Field) BeginBatchEdit() bool {
	return f.send(Message{Type: TypeBeginBatchEdit})
}

// EndBatchEdit closes a batch on the field.
func (f *Field) EndBatchEdit() bool {
	return f.send(Message{Type: TypeEndBatchEdit})
}

// SetSelection moves the field's selection.
func (f *Field) SetSelection(r editor.Range) bool {
	return f.send(Message{Type: TypeSetSelection, Start: r.Start, End: r.End})
}

// CommitText replaces the composing region or selection with text.
func (f *Field) CommitText(text string) bool {
	return f.send(Message{Type: TypeCommitText, Text: text})
}

// DeleteSurrounding removes runes around the selection.
func (f *Field) DeleteSurrounding(before, after int) bool {
	return f.send(Message{Type: TypeDeleteSurrounding, Before: before, After: after})
}

// SetComposingRegion marks a span as the provisional IME-owned text.
func (f *Field) SetComposingRegion(r editor.Range) bool {
	return f.send(Message{Type: TypeSetComposingRegion, Start: r.Start, End: r.End})
}

// FinishComposing clears the composing region, keeping its text.
func (f *Field) FinishComposing() bool {
	return f.send(Message{Type: TypeFinishComposing})
}

// IsRaw reports what the bound field declared in its hello. A detached
// field reports false; operations fail on the nil-session check instead.
func (f *Field) IsRaw() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw
}
