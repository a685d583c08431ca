package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Room names mirror user roles.
const (
	RoomStudent    = "student"
	RoomDriver     = "driver"
	RoomManagement = "management"
)

// Event names pushed to subscribers.
const (
	EventFeedbackReceived   = "feedbackReceived"
	EventBusLocationUpdate  = "busLocationUpdate"
	EventBusRequestReceived = "busRequestReceived"
)

// Envelope is the wire format of every pushed event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub groups live websocket subscribers into role rooms and fans events out
// to them. Delivery is fire-and-forget: no ack, no retry, no replay. A
// subscriber that joins after an event was sent never sees it.
type Hub struct {
	rooms map[string]map[*websocket.Conn]bool
	mu    sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]bool),
	}
}

// Join adds a connection to a room.
func (h *Hub) Join(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*websocket.Conn]bool)
	}
	h.rooms[room][conn] = true
	log.Printf("WebSocket client joined %s room", room)
}

// Leave removes a connection from every room it joined.
func (h *Hub) Leave(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, conns := range h.rooms {
		if conns[conn] {
			delete(conns, conn)
			log.Printf("WebSocket client left %s room", room)
		}
	}
}

// Broadcast sends one event to every subscriber in a room. Connections that
// fail to take the write are dropped on the spot.
func (h *Hub) Broadcast(room, event string, data interface{}) {
	message, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[room] {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			delete(h.rooms[room], conn)
			conn.Close()
		}
	}
}

// RoomSize reports the number of live subscribers in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
