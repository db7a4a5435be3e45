package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smbpulse/pkg/contracts/domain"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func registerTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)
	return client
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := startHub(t)
	client := registerTestClient(t, hub)

	hub.Broadcast(EventDataReloaded, map[string]interface{}{"rows": 5})

	select {
	case payload := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, EventDataReloaded, msg.Type)
		assert.False(t, msg.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("client never received the broadcast")
	}
}

func TestHub_NotifyDataReloaded(t *testing.T) {
	hub := startHub(t)
	client := registerTestClient(t, hub)

	hub.NotifyDataReloaded(domain.DatasetStatus{Rows: 42, Encoding: "euc-kr"})

	select {
	case payload := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, EventDataReloaded, msg.Type)

		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(42), data["rows"])
		assert.Equal(t, "euc-kr", data["encoding"])
	case <-time.After(time.Second):
		t.Fatal("client never received the reload event")
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := startHub(t)
	client := registerTestClient(t, hub)

	hub.unregister <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}
