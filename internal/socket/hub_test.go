package socket

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
)

// dialInto opens a real websocket pair and registers the server side of it in
// the given room. Returns the client side.
func dialInto(t *testing.T, hub *Hub, room string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	joined := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Join(room, conn)
		close(joined)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	<-joined
	return client
}

func TestHubBroadcastReachesRoom(t *testing.T) {
	hub := NewHub()
	client := dialInto(t, hub, RoomManagement)

	hub.Broadcast(RoomManagement, EventBusRequestReceived, map[string]string{"requestID": "REQ-1"})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, EventBusRequestReceived, envelope.Event)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "REQ-1", data["requestID"])
}

func TestHubBroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	student := dialInto(t, hub, RoomStudent)
	management := dialInto(t, hub, RoomManagement)

	hub.Broadcast(RoomStudent, EventBusLocationUpdate, map[string]string{"busId": "KBUS001"})

	student.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := student.ReadMessage()
	require.NoError(t, err, "student room must receive the location update")

	management.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = management.ReadMessage()
	assert.Error(t, err, "management room must not receive a student event")
}

func TestHubLeave(t *testing.T) {
	hub := NewHub()
	dialInto(t, hub, RoomDriver)

	require.Equal(t, 1, hub.RoomSize(RoomDriver))

	// Grab the server-side conn by broadcasting then leaving every member.
	hub.mu.Lock()
	var conn *websocket.Conn
	for c := range hub.rooms[RoomDriver] {
		conn = c
	}
	hub.mu.Unlock()
	require.NotNil(t, conn)

	hub.Leave(conn)
	assert.Equal(t, 0, hub.RoomSize(RoomDriver))

	// Broadcasting into an empty room is a no-op, not a panic.
	hub.Broadcast(RoomDriver, EventFeedbackReceived, nil)
}

func TestHubBroadcastToNeverJoinedRoom(t *testing.T) {
	hub := NewHub()
	// No subscribers at all: event is simply dropped.
	hub.Broadcast(RoomManagement, EventFeedbackReceived, map[string]string{"subject": "late bus"})
	assert.Equal(t, 0, hub.RoomSize(RoomManagement))
}
