package dispatcher

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const maxHandshakeSize = 4096

var ackAdded = []byte(`{"message":"added"}`)

// Handshake is the first message a client sends, e.g.
// {"id":"bob","events":["TradeCompleted"]}. Later messages re-subscribe.
type Handshake struct {
	ID     string   `json:"id"`
	Events []string `json:"events"`
}

type errorMessage struct {
	Error string `json:"error"`
}

// outboundQueueSize bounds the payloads waiting for a slow reader.
const outboundQueueSize = 16

var (
	// ErrSendQueueFull is returned when a connection has too many unsent payloads.
	ErrSendQueueFull = errors.New("send queue full")
	// ErrConnClosed is returned by Send after the connection has shut down.
	ErrConnClosed = errors.New("connection closed")
)

// wsConn queues outbound payloads for a single writer goroutine; gorilla
// connections allow one writer at a time. Send never blocks.
type wsConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	out          chan []byte
	done         chan struct{}
	closeOnce    sync.Once
}

func newWSConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		ws:           ws,
		writeTimeout: writeTimeout,
		out:          make(chan []byte, outboundQueueSize),
		done:         make(chan struct{}),
	}
}

func (c *wsConn) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// writeLoop drains the queue until the connection closes. A failed write
// closes the connection, which also ends the reader in ServeWS.
func (c *wsConn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.out:
			if c.writeTimeout > 0 {
				_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				writeFailuresTotal.Inc()
				logger.Warningf("Write to %s failed, closing: %s", c.ws.RemoteAddr(), err)
				c.close()
				return
			}
		}
	}
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Server accepts subscriber WebSocket connections.
type Server struct {
	registry     *Registry
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func NewServer(registry *Registry, writeTimeout time.Duration) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Subscribers connect from the web client served on another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
	}
}

// Register mounts the WebSocket endpoint on "/" and "/ws", and /healthz.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/healthz", s.healthz)
	mux.HandleFunc("/", s.ServeWS)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"subscribers": s.registry.Len(),
	})
}

// ServeWS upgrades the request and serves one subscriber until it disconnects.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warningf("WebSocket upgrade from %s failed: %s", r.RemoteAddr, err)
		return
	}
	ws.SetReadLimit(maxHandshakeSize)

	conn := newWSConn(ws, s.writeTimeout)
	go conn.writeLoop()
	connectionsGauge.Inc()
	logger.Debugf("Connection opened from %s", r.RemoteAddr)
	defer func() {
		s.registry.Unsubscribe(conn)
		connectionsGauge.Dec()
		conn.close()
		logger.Debugf("Connection from %s closed", r.RemoteAddr)
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warningf("Connection from %s dropped: %s", r.RemoteAddr, err)
			}
			return
		}

		var hs Handshake
		if err := json.Unmarshal(msg, &hs); err != nil {
			s.reject(conn, "handshake is not valid JSON")
			continue
		}
		if err := s.registry.Subscribe(conn, hs.ID, hs.Events); err != nil {
			s.reject(conn, "handshake requires a participant id")
			continue
		}
		if err := conn.Send(ackAdded); err != nil {
			logger.Warningf("Failed to acknowledge participant '%s': %s", hs.ID, err)
			return
		}
	}
}

func (s *Server) reject(conn *wsConn, reason string) {
	msg, _ := json.Marshal(errorMessage{Error: reason})
	if err := conn.Send(msg); err != nil {
		logger.Debugf("Failed to send rejection: %s", err)
	}
}
