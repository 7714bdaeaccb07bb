package remote

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/keybridge/internal/editor"
	"github.com/dshills/keybridge/internal/host"
)

// testBridge is one served bridge plus a channel of hub updates.
type testBridge struct {
	srv     *Server
	hub     *host.UpdateHub
	ts      *httptest.Server
	updates chan host.Update
}

func newTestBridge(t *testing.T) *testBridge {
	t.Helper()
	hub := host.NewUpdateHub()
	if err := hub.Start(); err != nil {
		t.Fatalf("hub.Start() failed: %v", err)
	}
	updates := make(chan host.Update, 16)
	if _, err := hub.Subscribe(host.DeliverySync, func(u host.Update) {
		updates <- u
	}); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	srv := NewServer(hub)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		hub.Stop(ctx)
	})
	return &testBridge{srv: srv, hub: hub, ts: ts, updates: updates}
}

func (b *testBridge) wsURL() string {
	return "ws" + strings.TrimPrefix(b.ts.URL, "http") + "/field"
}

func (b *testBridge) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(b.wsURL(), nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, m Message) {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("WriteMessage() failed: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() failed: %v", err)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	return m
}

func waitUpdate(t *testing.T, b *testBridge) host.Update {
	t.Helper()
	select {
	case u := <-b.updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return host.Update{}
	}
}

func hello(text string, cursor int) Message {
	return Message{
		Type:      TypeHello,
		Text:      text,
		SelStart:  cursor,
		SelEnd:    cursor,
		CompStart: -1,
		CompEnd:   -1,
	}
}

func TestField_DetachedOperationsFail(t *testing.T) {
	f := NewField(host.NewUpdateHub())

	if f.Attached() {
		t.Error("expected new field to be detached")
	}
	if f.CommitText("a") {
		t.Error("expected CommitText to fail on detached field")
	}
	if f.DeleteSurrounding(1, 0) {
		t.Error("expected DeleteSurrounding to fail on detached field")
	}
	if f.SetSelection(editor.Cursor(0)) {
		t.Error("expected SetSelection to fail on detached field")
	}
	if f.FinishComposing() {
		t.Error("expected FinishComposing to fail on detached field")
	}
	if f.IsRaw() {
		t.Error("expected detached field to not report raw")
	}
}

func TestServer_HelloAttachesAndPublishes(t *testing.T) {
	b := newTestBridge(t)
	conn := b.dial(t)

	sendFrame(t, conn, hello("Hello", 5))

	u := waitUpdate(t, b)
	if u.Text != "Hello" {
		t.Errorf("expected text %q, got %q", "Hello", u.Text)
	}
	if u.Selection != (editor.Range{Start: 5, End: 5}) {
		t.Errorf("expected selection 5..5, got %v", u.Selection)
	}
	if u.Composing.IsValid() {
		t.Errorf("expected no composing region, got %v", u.Composing)
	}
	if !b.srv.Field().Attached() {
		t.Error("expected field to be attached after hello")
	}
}

func TestServer_EditFramesReachField(t *testing.T) {
	b := newTestBridge(t)
	conn := b.dial(t)
	sendFrame(t, conn, hello("", 0))
	waitUpdate(t, b)

	if !b.srv.Field().CommitText("hi") {
		t.Fatal("expected CommitText to succeed while attached")
	}
	m := readFrame(t, conn)
	if m.Type != TypeCommitText {
		t.Errorf("expected frame type %q, got %q", TypeCommitText, m.Type)
	}
	if m.Text != "hi" {
		t.Errorf("expected text %q, got %q", "hi", m.Text)
	}

	if !b.srv.Field().DeleteSurrounding(1, 0) {
		t.Fatal("expected DeleteSurrounding to succeed while attached")
	}
	m = readFrame(t, conn)
	if m.Type != TypeDeleteSurrounding {
		t.Errorf("expected frame type %q, got %q", TypeDeleteSurrounding, m.Type)
	}
	if m.Before != 1 || m.After != 0 {
		t.Errorf("expected before=1 after=0, got before=%d after=%d", m.Before, m.After)
	}

	if !b.srv.Field().SetSelection(editor.Range{Start: 1, End: 2}) {
		t.Fatal("expected SetSelection to succeed while attached")
	}
	m = readFrame(t, conn)
	if m.Type != TypeSetSelection {
		t.Errorf("expected frame type %q, got %q", TypeSetSelection, m.Type)
	}
	if m.Start != 1 || m.End != 2 {
		t.Errorf("expected range 1..2, got %d..%d", m.Start, m.End)
	}
}

func TestServer_ContentUpdateForwarded(t *testing.T) {
	b := newTestBridge(t)
	conn := b.dial(t)
	sendFrame(t, conn, hello("", 0))
	waitUpdate(t, b)

	sendFrame(t, conn, Message{
		Type:      TypeContentUpdate,
		Text:      "typed",
		SelStart:  5,
		SelEnd:    5,
		CompStart: 0,
		CompEnd:   5,
	})

	u := waitUpdate(t, b)
	if u.Text != "typed" {
		t.Errorf("expected text %q, got %q", "typed", u.Text)
	}
	if u.Composing != (editor.Range{Start: 0, End: 5}) {
		t.Errorf("expected composing 0..5, got %v", u.Composing)
	}
}

func TestServer_RawHello(t *testing.T) {
	b := newTestBridge(t)
	conn := b.dial(t)

	h := hello("", 0)
	h.Raw = true
	sendFrame(t, conn, h)
	waitUpdate(t, b)

	if !b.srv.Field().IsRaw() {
		t.Error("expected field to report raw after raw hello")
	}
}

func TestServer_FirstFrameMustBeHello(t *testing.T) {
	b := newTestBridge(t)
	conn := b.dial(t)

	sendFrame(t, conn, Message{Type: TypeContentUpdate, Text: "sneaky"})

	// The server drops the session without attaching or publishing.
	select {
	case u := <-b.updates:
		t.Errorf("expected no update, got %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
	if b.srv.Field().Attached() {
		t.Error("expected field to stay detached")
	}
}

func TestServer_NewSessionDisplacesOld(t *testing.T) {
	b := newTestBridge(t)

	first := b.dial(t)
	sendFrame(t, first, hello("one", 3))
	waitUpdate(t, b)
	firstID := b.srv.Field().SessionID()

	second := b.dial(t)
	sendFrame(t, second, hello("two", 3))
	u := waitUpdate(t, b)
	if u.Text != "two" {
		t.Errorf("expected resync to new field %q, got %q", "two", u.Text)
	}
	secondID := b.srv.Field().SessionID()
	if secondID == "" || secondID == firstID {
		t.Errorf("expected a new session id, got %q (was %q)", secondID, firstID)
	}

	// Edits now land on the second session only.
	if !b.srv.Field().CommitText("x") {
		t.Fatal("expected CommitText to succeed on the new session")
	}
	m := readFrame(t, second)
	if m.Type != TypeCommitText || m.Text != "x" {
		t.Errorf("expected commitText %q on new session, got %+v", "x", m)
	}
}

func TestServer_DisconnectDetaches(t *testing.T) {
	b := newTestBridge(t)
	conn := b.dial(t)
	sendFrame(t, conn, hello("", 0))
	waitUpdate(t, b)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for b.srv.Field().Attached() {
		if time.Now().After(deadline) {
			t.Fatal("field still attached after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if b.srv.Field().CommitText("a") {
		t.Error("expected CommitText to fail after disconnect")
	}
}

func TestServer_SessionListener(t *testing.T) {
	b := newTestBridge(t)

	events := make(chan bool, 4)
	b.srv.OnSession(func(id string, attached bool) {
		if id == "" {
			t.Error("expected a session id")
		}
		events <- attached
	})

	conn := b.dial(t)
	sendFrame(t, conn, hello("", 0))
	waitUpdate(t, b)

	select {
	case attached := <-events:
		if !attached {
			t.Error("expected attach event first")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for attach event")
	}

	conn.Close()
	select {
	case attached := <-events:
		if attached {
			t.Error("expected detach event after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for detach event")
	}
}

func TestServer_ListenAndShutdown(t *testing.T) {
	hub := host.NewUpdateHub()
	hub.Start()
	defer hub.Stop(context.Background())

	srv := NewServer(hub)
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	if srv.Addr() == "" {
		t.Error("expected a bound address after Listen()")
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/field", nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	if err := srv.Shutdown(ctx); err != ErrServerNotListening {
		t.Errorf("expected ErrServerNotListening, got %v", err)
	}
}
