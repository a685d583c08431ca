package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campus-bus-api-server/internal/auth"
	"campus-bus-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsServer(t *testing.T, hub *socket.Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &WebSocketHandler{Hub: hub}
	router.GET("/ws", h.ServeWs)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dialWs(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestServeWsRejectsMissingToken(t *testing.T) {
	srv := wsServer(t, socket.NewHub())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
}

func TestJoinRoomWithoutData(t *testing.T) {
	hub := socket.NewHub()
	srv := wsServer(t, hub)

	token, err := auth.GenerateJWT("driver-1", "driver1@campus.edu", "driver", "KBUS001")
	require.NoError(t, err)
	client := dialWs(t, srv, token)

	// No data payload at all: the token's role decides the room.
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"event":"joinRoom"}`)))

	require.Eventually(t, func() bool {
		return hub.RoomSize(socket.RoomDriver) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestJoinRoomRejectsMismatchedRole(t *testing.T) {
	hub := socket.NewHub()
	srv := wsServer(t, hub)

	token, err := auth.GenerateJWT("driver-1", "driver1@campus.edu", "driver", "KBUS001")
	require.NoError(t, err)
	client := dialWs(t, srv, token)

	// Claimed management, token says driver: the join must be dropped.
	require.NoError(t, client.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"joinRoom","data":{"role":"management"}}`)))
	// A matching claim afterwards still works on the same connection.
	require.NoError(t, client.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"joinRoom","data":{"role":"driver"}}`)))

	require.Eventually(t, func() bool {
		return hub.RoomSize(socket.RoomDriver) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.RoomSize(socket.RoomManagement))
}
