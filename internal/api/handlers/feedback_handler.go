package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"campus-bus-api-server/internal/models"
	"campus-bus-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FeedbackHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type SendFeedbackRequest struct {
	BusID        string `json:"busId"` // empty means general feedback
	Subject      string `json:"subject" binding:"required"`
	Message      string `json:"message" binding:"required"`
	Rating       int    `json:"rating" binding:"omitempty,min=1,max=5"`
	IsAnonymous  bool   `json:"isAnonymous"`
	SentToDriver *bool  `json:"sentToDriver"`
	SentToAdmin  *bool  `json:"sentToAdmin"`
}

// SendFeedback files student feedback, optionally tied to a bus. Management
// always gets a live push; the driver room too when a bus is named.
func (h *FeedbackHandler) SendFeedback(c *gin.Context) {
	studentID := c.GetString("user_id")

	var req SendFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var student models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"userID": studentID}).Decode(&student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load student profile"})
		return
	}

	studentName := student.Name
	if req.IsAnonymous {
		studentName = "Anonymous"
	}

	newFeedback := models.Feedback{
		FeedbackID:   fmt.Sprintf("FB-%s", uuid.New().String()[:8]),
		StudentID:    studentID,
		StudentName:  studentName,
		Subject:      req.Subject,
		Message:      req.Message,
		Rating:       req.Rating,
		IsAnonymous:  req.IsAnonymous,
		SentToDriver: req.SentToDriver == nil || *req.SentToDriver,
		SentToAdmin:  req.SentToAdmin == nil || *req.SentToAdmin,
		Status:       models.FeedbackPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if req.BusID != "" {
		var bus models.Bus
		err := h.DB.Collection("buses").FindOne(context.Background(), bson.M{"busID": req.BusID}).Decode(&bus)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load bus"})
			}
			return
		}
		newFeedback.BusID = bus.BusID
		newFeedback.BusName = bus.BusName
		newFeedback.BusNumber = bus.BusNumber
		newFeedback.DriverID = bus.DriverID
		newFeedback.DriverName = bus.DriverName
	} else {
		newFeedback.BusName = "General Feedback"
		newFeedback.SentToDriver = false
	}

	result, err := h.DB.Collection("feedback").InsertOne(context.Background(), newFeedback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit feedback"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newFeedback.ID = oid
	}

	h.Hub.Broadcast(socket.RoomManagement, socket.EventFeedbackReceived, newFeedback)
	if newFeedback.BusID != "" {
		h.Hub.Broadcast(socket.RoomDriver, socket.EventFeedbackReceived, newFeedback)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "feedback": newFeedback})
}

// ListDriverFeedback returns feedback addressed to the logged-in driver.
func (h *FeedbackHandler) ListDriverFeedback(c *gin.Context) {
	driverID := c.GetString("user_id")

	filter := bson.M{"driverID": driverID, "sentToDriver": true}
	cursor, err := h.DB.Collection("feedback").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query feedback"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.Feedback
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode feedback"})
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feedback": items})
}

// ListAdminFeedback returns the merged feedback view for management: bus-tied
// and general feedback live in one collection, so this is a single query.
func (h *FeedbackHandler) ListAdminFeedback(c *gin.Context) {
	filter := bson.M{"sentToAdmin": true}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.DB.Collection("feedback").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query feedback"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.Feedback
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode feedback"})
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feedback": items})
}

// MarkFeedbackRead flips the reader-specific flag. Driver and admin keep
// independent read state on the same document.
func (h *FeedbackHandler) MarkFeedbackRead(c *gin.Context) {
	feedbackID := c.Param("feedbackId")
	role := c.GetString("user_role")

	field := "readByAdmin"
	filter := bson.M{"feedbackID": feedbackID}
	if role == models.RoleDriver {
		field = "readByDriver"
		filter["driverID"] = c.GetString("user_id")
	}

	result, err := h.DB.Collection("feedback").UpdateOne(context.Background(), filter,
		bson.M{"$set": bson.M{field: true, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to mark feedback read"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Feedback not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback marked as read"})
}

type RespondFeedbackRequest struct {
	Response string `json:"response" binding:"required"`
}

// RespondFeedback records a driver's or admin's reply and moves the feedback
// to responding.
func (h *FeedbackHandler) RespondFeedback(c *gin.Context) {
	feedbackID := c.Param("feedbackId")
	role := c.GetString("user_role")

	var req RespondFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	field := "adminResponse"
	filter := bson.M{"feedbackID": feedbackID}
	if role == models.RoleDriver {
		field = "driverResponse"
		filter["driverID"] = c.GetString("user_id")
	}

	result, err := h.DB.Collection("feedback").UpdateOne(context.Background(), filter,
		bson.M{"$set": bson.M{
			field:       req.Response,
			"status":    models.FeedbackResponding,
			"updatedAt": time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to respond to feedback"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Feedback not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Response recorded"})
}

type UpdateFeedbackStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending responding resolved"`
}

// UpdateFeedbackStatus is the management-side status control.
func (h *FeedbackHandler) UpdateFeedbackStatus(c *gin.Context) {
	feedbackID := c.Param("feedbackId")

	var req UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.DB.Collection("feedback").UpdateOne(context.Background(),
		bson.M{"feedbackID": feedbackID},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update feedback"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Feedback not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback status updated"})
}
