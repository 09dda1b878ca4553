// Package web streams node reports to browsers over WebSocket.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/detector"
	"github.com/danielliyk/Embedded-System-Labs/node"
)

const (
	sendBuffer   = 64
	writeTimeout = 2 * time.Second
)

// ErrNotRunning may be returned by a snapshot function before the node
// starts. /history answers 503 for it.
var ErrNotRunning = errors.New("node not running")

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Command is a message a client may send. A positive PeriodMS changes the
// poll period.
type Command struct {
	PeriodMS int `json:"period_ms"`
}

type client struct {
	send chan node.Report
}

// Hub fans reports out to connected WebSocket clients. Slow clients drop
// reports rather than stall the polling task.
type Hub struct {
	log      *slog.Logger
	setPoll  func(time.Duration) error
	snapshot func() (detector.Snapshot, error)
	mu       sync.Mutex
	clients  map[*client]struct{}
	last     node.Report
	haveLast bool
}

// NewHub creates a hub. setPoll may be nil to ignore client commands and
// snapshot may be nil to disable /history.
func NewHub(setPoll func(time.Duration) error, snapshot func() (detector.Snapshot, error), log *slog.Logger) *Hub {
	return &Hub{
		log:      config.Discard(log),
		setPoll:  setPoll,
		snapshot: snapshot,
		clients:  make(map[*client]struct{}),
	}
}

// Observe is a node.Observer. It never blocks.
func (h *Hub) Observe(r node.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last, h.haveLast = r, true
	for c := range h.clients {
		select {
		case c.send <- r:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler serves /ws, /status and /history.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/status", h.serveStatus)
	mux.HandleFunc("/history", h.serveHistory)
	return mux
}

func (h *Hub) serveStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	last, ok := h.last, h.haveLast
	h.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(last)
}

// serveHistory answers with the detector snapshot: sample count, state,
// recent filtered values and crossing events.
func (h *Hub) serveHistory(w http.ResponseWriter, r *http.Request) {
	if h.snapshot == nil {
		http.NotFound(w, r)
		return
	}
	snap, err := h.snapshot()
	if errors.Is(err, ErrNotRunning) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		h.log.Warn("could not take snapshot", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "err", err)
		return
	}
	c := &client{send: make(chan node.Report, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("websocket client connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var cmd Command
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			h.apply(cmd)
		}
	}()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		conn.Close()
		h.log.Info("websocket client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		select {
		case <-done:
			return
		case rep := <-c.send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				h.log.Debug("websocket write deadline failed", "err", err)
				return
			}
			if err := conn.WriteJSON(rep); err != nil {
				return
			}
		}
	}
}

func (h *Hub) apply(cmd Command) {
	if cmd.PeriodMS <= 0 || h.setPoll == nil {
		return
	}
	d := time.Duration(cmd.PeriodMS) * time.Millisecond
	if err := h.setPoll(d); err != nil {
		h.log.Warn("could not set poll period", "err", err)
		return
	}
	h.log.Info("poll period set by client", "period", d)
}
