// Package web exposes the event stream to front-end collaborators over
// websocket. The UI itself lives outside this repository; this hub only
// broadcasts what the core publishes.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hive/events"
)

// Hub relays bus events to connected websocket clients
type Hub struct {
	bus    *events.Bus
	log    *zap.Logger
	server *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

// NewHub creates a hub serving the event stream at /events
func NewHub(addr string, bus *events.Bus, log *zap.Logger) *Hub {
	h := &Hub{
		bus:     bus,
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// local tool: the UI connects from file:// or localhost
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleEvents)
	h.server = &http.Server{Addr: addr, Handler: mux}
	return h
}

// Run serves until the context is cancelled, pumping bus events to every
// connected client
func (h *Hub) Run(ctx context.Context) error {
	sub, cancel := h.bus.Subscribe(256)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = h.server.Shutdown(shutdownCtx)
	}()

	go h.pump(sub)

	err := h.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (h *Hub) pump(sub <-chan events.Event) {
	for ev := range sub {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		h.broadcast(payload)
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Debug("dropping websocket client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// drain client messages so pings are answered; clients are read-only
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.clients, conn)
				h.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
