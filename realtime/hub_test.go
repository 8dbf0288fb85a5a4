package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPushesEventsToClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewBroker(nil, testLogger())
	defer broker.Close()
	hub := NewHub(broker, testLogger())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Hub.Run subscribes asynchronously; publish until the client sees it.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	done := make(chan Event, 1)
	go func() {
		var e Event
		if err := conn.ReadJSON(&e); err == nil {
			done <- e
		}
	}()

	var got Event
	require.Eventually(t, func() bool {
		broker.Publish(ctx, Event{Name: EventHappyUpdated, Data: map[string]any{"active": true}})
		select {
		case got = <-done:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	assert.Equal(t, EventHappyUpdated, got.Name)
	assert.Equal(t, true, got.Data["active"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
