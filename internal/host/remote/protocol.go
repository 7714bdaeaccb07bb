package remote

// Frame types sent bridge → field. Each mirrors one editor.Connection call.
const (
	TypeCommitText         = "commitText"
	TypeDeleteSurrounding  = "deleteSurrounding"
	TypeSetSelection       = "setSelection"
	TypeSetComposingRegion = "setComposingRegion"
	TypeFinishComposing    = "finishComposing"
	TypeBeginBatchEdit     = "beginBatchEdit"
	TypeEndBatchEdit       = "endBatchEdit"
)

// Frame types sent field → bridge.
const (
	// TypeHello must be the field's first frame: field capabilities plus
	// the initial content snapshot.
	TypeHello = "hello"

	// TypeContentUpdate is the asynchronous echo. The field may send it
	// zero, one, or several times per edit; the bridge just forwards.
	TypeContentUpdate = "contentUpdate"
)

// Message is the wire envelope for both directions. One flat struct keeps
// the protocol legible from the JSON alone; fields a frame type does not
// use stay at their zero values and the counterpart ignores them.
//
// All offsets and counts are runes. Composing start/end of -1 mean no
// composing region.
type Message struct {
	Type string `json:"type"`

	// Text carries commitText payload bridge-ward and the full reported
	// text field-ward (hello, contentUpdate).
	Text string `json:"text,omitempty"`

	// DeleteSurrounding payload.
	Before int `json:"before,omitempty"`
	After  int `json:"after,omitempty"`

	// SetSelection / setComposingRegion payload.
	Start int `json:"start"`
	End   int `json:"end"`

	// Hello payload: the field lacks rich-editing semantics.
	Raw bool `json:"raw,omitempty"`

	// Hello / contentUpdate payload.
	SelStart  int `json:"selStart"`
	SelEnd    int `json:"selEnd"`
	CompStart int `json:"compStart"`
	CompEnd   int `json:"compEnd"`
}
