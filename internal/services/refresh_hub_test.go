package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub spins up a server that registers incoming connections on the hub
// and returns a connected client.
func dialHub(t *testing.T, hub *RefreshHub, userID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Registration happens in the server handler; wait for it before
	// broadcasting.
	require.Eventually(t, func() bool { return hub.IsOnline(userID) },
		time.Second, 5*time.Millisecond)
	return client
}

func TestNotifyPetsUpdated_DeliversToClient(t *testing.T) {
	hub := NewRefreshHub()
	client := dialHub(t, hub, "u1")
	assert.True(t, hub.IsOnline("u1"))

	hub.NotifyPetsUpdated("u1")

	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var msg RefreshMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "pets_updated", msg.Type)
	assert.NotZero(t, msg.Timestamp)
}

// Simultaneous mutations by the same user must not drive concurrent writes
// into one connection; every event still arrives intact.
func TestNotifyPetsUpdated_ConcurrentBroadcasts(t *testing.T) {
	hub := NewRefreshHub()
	client := dialHub(t, hub, "u1")

	const events = 20
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.NotifyPetsUpdated("u1")
		}()
	}

	for i := 0; i < events; i++ {
		_, data, err := client.ReadMessage()
		require.NoError(t, err)

		var msg RefreshMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "pets_updated", msg.Type)
	}
	wg.Wait()
}

func TestUnregister_LastConnectionTakesUserOffline(t *testing.T) {
	hub := NewRefreshHub()

	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register("u1", conn)
		conns <- conn
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	for i := 0; i < 2; i++ {
		client, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer client.Close()
	}

	first, second := <-conns, <-conns
	hub.Unregister("u1", first)
	assert.True(t, hub.IsOnline("u1"))

	hub.Unregister("u1", second)
	assert.False(t, hub.IsOnline("u1"))
}
