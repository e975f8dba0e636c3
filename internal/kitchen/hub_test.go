package kitchen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bistro/internal/events"
	"bistro/internal/logger"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, origins ...string) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(logger.Discard(), origins...)
	router := gin.New()
	router.GET("/ws", hub.ServeWS)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsEvents(t *testing.T) {
	hub, url := newTestHub(t)

	var count atomic.Int64
	hub.OnCount = func(n int) { count.Store(int64(n)) }

	first := dial(t, url)
	second := dial(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2), count.Load())

	order := &models.Order{
		ID:           "o1",
		Status:       models.OrderStatusPending,
		TotalPrice:   4.98,
		CustomerInfo: models.CustomerInfo{Name: "Ada", Email: "ada@example.com", Phone: "555-0101"},
	}
	require.NoError(t, hub.Publish(context.Background(), events.NewEvent(events.OrderPlaced, "o1", order)))

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev events.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, events.OrderPlaced, ev.Type)
		assert.Equal(t, "o1", ev.OrderID)
		require.NotNil(t, ev.Order)
		assert.Equal(t, 4.98, ev.Order.TotalPrice)
		assert.Equal(t, models.CustomerInfo{}, ev.Order.CustomerInfo)
		assert.NotContains(t, string(data), "ada@example.com")
	}
}

func TestHub_ChecksOrigin(t *testing.T) {
	hub, url := newTestHub(t, "http://kitchen.example")

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"http://kitchen.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	// No Origin header: not a browser
	dial(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Publishing with no displays is not an error
	assert.NoError(t, hub.Publish(context.Background(), events.NewEvent(events.OrderDeleted, "o1", nil)))
}

func TestHub_CloseDisconnectsDisplays(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Count())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
