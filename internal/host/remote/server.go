package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dshills/keybridge/internal/host"
)

// ErrServerNotListening is returned when shutting down a server that never
// started.
var ErrServerNotListening = errors.New("remote server is not listening")

// SessionFunc hears session lifecycle changes: attached true when a field
// binds, false when it goes away.
type SessionFunc func(sessionID string, attached bool)

// Server accepts field sessions on the /field websocket endpoint and binds
// the newest one to its Field. A keyboard focuses one field at a time, so a
// later connection is a focus change: it displaces the earlier session.
type Server struct {
	field    *Field
	upgrader websocket.Upgrader

	mu        sync.Mutex
	listener  net.Listener
	httpSrv   *http.Server
	onSession SessionFunc
	onError   func(error)
}

// NewServer creates a bridge server publishing field echoes to hub.
func NewServer(hub *host.UpdateHub) *Server {
	return &Server{
		field: NewField(hub),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Field returns the server's Connection. Valid before any session attaches;
// operations report false until one does.
func (s *Server) Field() *Field {
	return s.field
}

// OnSession installs the session lifecycle listener.
func (s *Server) OnSession(fn SessionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSession = fn
}

// SetErrorHandler installs a hook for transport errors. Transport errors
// are never fatal; a dropped session just detaches the field.
func (s *Server) SetErrorHandler(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// Listen starts serving on addr. Non-blocking; serving continues until
// Shutdown.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("remote listen: %w", err)
	}
	srv := &http.Server{Handler: s}
	s.mu.Lock()
	s.listener = ln
	s.httpSrv = srv
	s.mu.Unlock()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the listener and closes the bound session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.httpSrv = nil
	s.listener = nil
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotListening
	}
	return srv.Shutdown(ctx)
}

// ServeHTTP routes /field to the websocket handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/field" {
		s.handleWebSocket(w, r)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.fail(fmt.Errorf("websocket upgrade: %w", err))
		return
	}
	sess := &session{id: uuid.New().String(), conn: conn}
	defer func() {
		s.field.detach(sess)
		_ = conn.Close()
		s.notifySession(sess.id, false)
	}()

	// The first frame must be the hello snapshot; nothing is known about
	// the field before it.
	hello, ok := s.readFrame(conn)
	if !ok || hello.Type != TypeHello {
		return
	}
	s.field.attach(sess, hello)
	s.notifySession(sess.id, true)

	for {
		m, ok := s.readFrame(conn)
		if !ok {
			return
		}
		s.field.handle(m)
	}
}

func (s *Server) readFrame(conn *websocket.Conn) (Message, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return Message{}, false
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		s.fail(fmt.Errorf("bad frame: %w", err))
		return Message{}, false
	}
	return m, true
}

func (s *Server) notifySession(id string, attached bool) {
	s.mu.Lock()
	fn := s.onSession
	s.mu.Unlock()
	if fn != nil {
		fn(id, attached)
	}
}

func (s *Server) fail(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
