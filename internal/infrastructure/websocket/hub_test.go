package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(nil)
	h.Start(ctx)
	return h
}

func TestPublishToUser_DeliversToEveryConnection(t *testing.T) {
	h := startHub(t)

	a := NewClient("u1", nil)
	b := NewClient("u1", nil)
	other := NewClient("u2", nil)
	h.Register(a)
	h.Register(b)
	h.Register(other)

	require.Eventually(t, func() bool { return h.ConnectedUsers() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.PublishToUser(context.Background(), "u1", "request:eta", map[string]int{"etaMinutes": 15}))

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var env struct {
				Type string         `json:"type"`
				Data map[string]int `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &env))
			assert.Equal(t, "request:eta", env.Type)
			assert.Equal(t, 15, env.Data["etaMinutes"])
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	assert.Len(t, other.Send, 0)
}

func isDone(c *Client) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestUnregister_StopsClient(t *testing.T) {
	h := startHub(t)
	c := NewClient("u1", nil)
	h.Register(c)
	h.Unregister(c)

	require.Eventually(t, func() bool { return h.ConnectedUsers() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, isDone(c))
	assert.NotPanics(t, func() { c.Send <- []byte("late") })
}

func TestStoppedHub_LateClientsStaySafe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	h.Start(ctx)

	live := NewClient("u1", nil)
	h.Register(live)
	require.Eventually(t, func() bool { return h.ConnectedUsers() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return isDone(live) }, time.Second, 5*time.Millisecond)

	late := NewClient("u2", nil)
	h.Register(late)
	assert.True(t, isDone(late))

	// a ping answered after shutdown must not write to a closed channel
	for _, c := range []*Client{live, late} {
		assert.NotPanics(t, func() { c.Send <- handleClientMessage([]byte(`{"type":"ping"}`)) })
	}
}

func TestPingPongOverRealSocket(t *testing.T) {
	h := startHub(t)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		c := NewClient("u1", conn)
		h.Register(c)
		go c.WritePump()
		go c.ReadPump(h)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pong"`)
}
