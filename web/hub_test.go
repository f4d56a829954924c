package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hive/events"
)

func TestHubBroadcastsBusEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	h := NewHub("127.0.0.1:0", bus, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(h.handleEvents))
	defer srv.Close()

	sub, cancel := bus.Subscribe(16)
	defer cancel()
	go h.pump(sub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the handler registers the client just after the handshake completes
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 1
	}, time.Second, 10*time.Millisecond)

	bus.Publish(events.Event{Type: events.FileChanged, Path: "main.py"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev events.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, events.FileChanged, ev.Type)
	assert.Equal(t, "main.py", ev.Path)
}

func TestHubDropsDeadClients(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	h := NewHub("127.0.0.1:0", bus, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(h.handleEvents))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()
	h.broadcast([]byte(`{}`))
	h.broadcast([]byte(`{}`))

	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 0
	}, time.Second, 10*time.Millisecond)
}
