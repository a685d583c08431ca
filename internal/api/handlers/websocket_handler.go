package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"campus-bus-api-server/internal/auth"
	"campus-bus-api-server/internal/models"
	"campus-bus-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Maximum wait for any message from the client before the socket is dropped.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub *socket.Hub
}

// clientMessage is what subscribers send upstream: a room join or one of the
// relayed notification events.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServeWs upgrades the connection and runs the read loop. The room a client
// may join is the role inside its verified token; the client-declared role is
// checked against it and never trusted on its own.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token is required"})
		return
	}

	claims, err := auth.ParseJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	defer func() {
		h.Hub.Leave(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close error: %v", err)
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		h.dispatch(conn, claims, msg)
	}
}

func (h *WebSocketHandler) dispatch(conn *websocket.Conn, claims *auth.JWTClaims, msg clientMessage) {
	switch msg.Event {
	case "joinRoom":
		// The verified token alone determines the room; data is only checked
		// for a contradicting role claim when present.
		var join struct {
			Role string `json:"role"`
		}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &join); err != nil {
				return
			}
		}
		if join.Role != "" && join.Role != claims.Role {
			log.Printf("Rejected room join: client claimed %q but token says %q", join.Role, claims.Role)
			return
		}
		h.Hub.Join(claims.Role, conn)

	case "newFeedback":
		if claims.Role != models.RoleStudent {
			return
		}
		var data map[string]interface{}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		h.Hub.Broadcast(socket.RoomManagement, socket.EventFeedbackReceived, data)
		if busID, ok := data["busId"].(string); ok && busID != "" {
			h.Hub.Broadcast(socket.RoomDriver, socket.EventFeedbackReceived, data)
		}

	case "locationUpdate":
		if claims.Role != models.RoleDriver {
			return
		}
		var data map[string]interface{}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		h.Hub.Broadcast(socket.RoomStudent, socket.EventBusLocationUpdate, data)

	case "newBusRequest":
		if claims.Role != models.RoleStudent {
			return
		}
		var data map[string]interface{}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		h.Hub.Broadcast(socket.RoomManagement, socket.EventBusRequestReceived, data)
	}
}
