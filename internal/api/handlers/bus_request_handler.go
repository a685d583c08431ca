package handlers

import (
	"context"
	"log"
	"net/http"

	"campus-bus-api-server/internal/busrequest"
	"campus-bus-api-server/internal/models"
	"campus-bus-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BusRequestHandler struct {
	Service *busrequest.Service
	Hub     *socket.Hub
	DB      *mongo.Database
}

type CreateBusRequestPayload struct {
	BusID        string `json:"busId" binding:"required"`
	BoardingStop string `json:"boardingStop" binding:"required"`
	Destination  string `json:"destination" binding:"required"`
}

// CreateRequest lets a student request a seat on a bus. At most one pending
// request per (student, bus) may exist; a duplicate gets 409.
func (h *BusRequestHandler) CreateRequest(c *gin.Context) {
	studentID := c.GetString("user_id")

	var payload CreateBusRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide all required fields"})
		return
	}

	request, err := h.Service.Create(c.Request.Context(), studentID, payload.BusID, payload.BoardingStop, payload.Destination)
	if err != nil {
		respondEngineError(c, err, "Error creating bus request")
		return
	}

	h.Hub.Broadcast(socket.RoomManagement, socket.EventBusRequestReceived, request)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus request submitted successfully", "request": request})
}

// DriverRequests lists the pending requests addressed to the logged-in driver.
func (h *BusRequestHandler) DriverRequests(c *gin.Context) {
	driverID := c.GetString("user_id")

	requests, err := h.Service.PendingForDriver(c.Request.Context(), driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// MyRequests lists every request owned by the logged-in student.
func (h *BusRequestHandler) MyRequests(c *gin.Context) {
	studentID := c.GetString("user_id")

	requests, err := h.Service.ForStudent(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// AcceptRequest transitions a pending request to accepted. Only the request's
// assigned driver may do this.
func (h *BusRequestHandler) AcceptRequest(c *gin.Context) {
	driverID := c.GetString("user_id")
	requestID := c.Param("requestId")

	request, err := h.Service.Accept(c.Request.Context(), requestID, driverID)
	if err != nil {
		respondEngineError(c, err, "Error accepting request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request accepted", "request": request})
}

// RejectRequest transitions a pending request to rejected.
func (h *BusRequestHandler) RejectRequest(c *gin.Context) {
	driverID := c.GetString("user_id")
	requestID := c.Param("requestId")

	request, err := h.Service.Reject(c.Request.Context(), requestID, driverID)
	if err != nil {
		respondEngineError(c, err, "Error rejecting request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request rejected", "request": request})
}

// BoardRequest transitions an accepted request to boarded when the passenger
// gets on the bus.
func (h *BusRequestHandler) BoardRequest(c *gin.Context) {
	driverID := c.GetString("user_id")
	requestID := c.Param("requestId")

	request, err := h.Service.Board(c.Request.Context(), requestID, driverID)
	if err != nil {
		respondEngineError(c, err, "Error boarding passenger")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Passenger boarded", "request": request})
}

// CancelRequest lets the owning student withdraw a request that is still
// pending.
func (h *BusRequestHandler) CancelRequest(c *gin.Context) {
	studentID := c.GetString("user_id")
	requestID := c.Param("requestId")

	if err := h.Service.Cancel(c.Request.Context(), requestID, studentID); err != nil {
		respondEngineError(c, err, "Error cancelling bus request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus request cancelled successfully"})
}

// BusPassengers returns the live roster of a bus to its driver.
func (h *BusRequestHandler) BusPassengers(c *gin.Context) {
	driverID := c.GetString("user_id")
	busID := c.Param("busId")

	if !h.driverOwnsBus(c, busID, driverID) {
		return
	}

	passengers, err := h.Service.Passengers(c.Request.Context(), busID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching passengers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "passengers": passengers})
}

// BusPassengerCount returns how many accepted passengers a bus has, for
// capacity display.
func (h *BusRequestHandler) BusPassengerCount(c *gin.Context) {
	driverID := c.GetString("user_id")
	busID := c.Param("busId")

	if !h.driverOwnsBus(c, busID, driverID) {
		return
	}

	count, err := h.Service.PassengerCount(c.Request.Context(), busID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error counting passengers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// driverOwnsBus rejects the call unless the logged-in driver drives the bus.
// Writes the response itself on failure.
func (h *BusRequestHandler) driverOwnsBus(c *gin.Context, busID, driverID string) bool {
	var bus models.Bus
	err := h.DB.Collection("buses").FindOne(context.Background(), bson.M{"busID": busID}).Decode(&bus)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching bus"})
		}
		return false
	}
	if bus.DriverID != driverID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to view passengers for this bus"})
		return false
	}
	return true
}

// respondEngineError maps a lifecycle error onto the API contract. Unknown
// errors are logged and surfaced as a generic 500.
func respondEngineError(c *gin.Context, err error, logPrefix string) {
	status := busrequest.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", logPrefix, err)
		c.JSON(status, gin.H{"success": false, "message": "Server error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}
