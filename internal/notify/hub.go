package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrNoSession = errors.New("no active session for recipient")

const writeWait = 2 * time.Second

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

// Hub holds the live WebSocket sessions keyed by subject (driver or client
// id). One session per subject; a reconnect displaces the previous socket.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*session)}
}

func (h *Hub) Register(subject string, conn *websocket.Conn) {
	h.mu.Lock()
	prev := h.sessions[subject]
	h.sessions[subject] = &session{conn: conn}
	h.mu.Unlock()

	if prev != nil {
		_ = prev.conn.Close()
	}
}

// Unregister removes the session only if it still owns the given conn, so a
// fast reconnect is not torn down by the old socket's cleanup.
func (h *Hub) Unregister(subject string, conn *websocket.Conn) {
	h.mu.Lock()
	if s, ok := h.sessions[subject]; ok && s.conn == conn {
		delete(h.sessions, subject)
	}
	h.mu.Unlock()
}

func (h *Hub) Send(subject string, v any) error {
	h.mu.RLock()
	s, ok := h.sessions[subject]
	h.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	return s.send(v)
}

// Ping writes a control frame through the session's write lock so it never
// interleaves with a data frame. No-op when conn no longer owns the session.
func (h *Hub) Ping(subject string, conn *websocket.Conn) error {
	h.mu.RLock()
	s, ok := h.sessions[subject]
	h.mu.RUnlock()
	if !ok || s.conn != conn {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

func (h *Hub) Connected(subject string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[subject]
	return ok
}
