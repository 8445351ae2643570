package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahidhamidi/well-data-refine-62/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	upgrader := Upgrader(config.Default().WebSocket, nil)
	server := httptest.NewServer(ServeWS(hub, upgrader, testLogger()))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubConnectionMessage(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	t.Cleanup(hub.Shutdown)

	conn := dialTestHub(t, hub)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeConnection, msg["type"])

	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "connected", data["status"])
	assert.NotEmpty(t, data["client_id"])
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	t.Cleanup(hub.Shutdown)

	conn := dialTestHub(t, hub)
	readMessage(t, conn) // drain connection message

	hub.Broadcast(TypeQualityUpdate, map[string]int{"overall": 87})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeQualityUpdate, msg["type"])

	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(87), data["overall"])
}

func TestHubBroadcastWithTrace(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	t.Cleanup(hub.Shutdown)

	conn := dialTestHub(t, hub)
	readMessage(t, conn)

	hub.BroadcastWithTrace(TypeDecimationUpdate, map[string]int{"points": 60}, "trace-9")

	msg := readMessage(t, conn)
	assert.Equal(t, TypeDecimationUpdate, msg["type"])
	assert.Equal(t, "trace-9", msg["trace_id"])
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	t.Cleanup(hub.Shutdown)

	assert.Equal(t, 0, hub.ClientCount())

	conn := dialTestHub(t, hub)
	readMessage(t, conn)

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
