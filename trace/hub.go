package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 256
	writeWait    = 5 * time.Second
)

// Hub fans frames out to websocket observers. Slow observers drop frames
// instead of stalling the simulation.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*observer]struct{}
	closed  bool

	nextID  atomic.Uint64
	dropped atomic.Uint64
}

type observer struct {
	id   string
	out  chan []byte
	once sync.Once
}

func (o *observer) close() {
	o.once.Do(func() { close(o.out) })
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*observer]struct{}),
	}
}

// Handler upgrades the request and streams every frame written after the
// connection was accepted.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			h.log.Warn("trace: websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		o := &observer{
			id:  fmt.Sprintf("O%d", h.nextID.Add(1)),
			out: make(chan []byte, clientBuffer),
		}
		if !h.register(o) {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		defer h.unregister(o)
		h.log.Info("trace: observer connected", "id", o.id, "remote", r.RemoteAddr)

		// Reader loop only watches for the peer going away.
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case b, ok := <-o.out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					h.log.Debug("trace: observer write failed", "id", o.id, "err", err)
					return
				}
			case <-readDone:
				h.log.Info("trace: observer disconnected", "id", o.id)
				return
			}
		}
	}
}

func (h *Hub) register(o *observer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[o] = struct{}{}
	return true
}

func (h *Hub) unregister(o *observer) {
	h.mu.Lock()
	delete(h.clients, o)
	h.mu.Unlock()
	o.close()
}

// WriteFrame broadcasts f to every connected observer.
func (h *Hub) WriteFrame(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for o := range h.clients {
		select {
		case o.out <- b:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Clients is the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts frames skipped because an observer fell behind.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every observer and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for o := range h.clients {
		o.close()
		delete(h.clients, o)
	}
	return nil
}
