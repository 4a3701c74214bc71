package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/p-n-ai/pai-course/internal/batch"
)

const (
	defaultHubBuffer = 256
	writeTimeout     = 5 * time.Second
)

// Hub fans batch events out to WebSocket subscribers. It is a batch.Sink.
// A subscriber that falls behind loses events rather than stalling the run.
type Hub struct {
	buffer int

	mu   sync.RWMutex
	subs map[string]chan batch.Event
}

// NewHub creates a hub whose subscribers each buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultHubBuffer
	}
	return &Hub{buffer: buffer, subs: make(map[string]chan batch.Event)}
}

// Emit delivers ev to every subscriber without blocking.
func (h *Hub) Emit(ev batch.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("progress subscriber lagging, event dropped", "subscriber", id, "run_id", ev.RunID)
		}
	}
}

// Subscribe registers a new subscriber. cancel must be called to release it.
func (h *Hub) Subscribe() (id string, events <-chan batch.Event, cancel func()) {
	id = uuid.NewString()
	ch := make(chan batch.Event, h.buffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	slog.Debug("progress subscriber registered", "subscriber", id)

	var once sync.Once
	return id, ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			slog.Debug("progress subscriber removed", "subscriber", id)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams events as JSON until the client
// goes away or the request context ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	id, events, cancel := h.Subscribe()
	defer cancel()

	// clients never send; CloseRead handles control frames and reports disconnects
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if err := write(ctx, conn, ev); err != nil {
				slog.Debug("progress write failed", "subscriber", id, "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev batch.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
