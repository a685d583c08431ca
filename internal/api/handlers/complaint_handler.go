package handlers

import (
	"context"
	"fmt"
	"log"
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

type ComplaintHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type SendComplaintRequest struct {
	BusID       string `json:"busId"`
	Subject     string `json:"subject" binding:"required"`
	Message     string `json:"message" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=schedule behavior cleanliness safety technical other"`
	Severity    int    `json:"severity" binding:"omitempty,min=1,max=5"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// SendComplaint files a formal complaint. The live push goes to management
// only; the driver of the named bus sees the complaint in their own listing.
func (h *ComplaintHandler) SendComplaint(c *gin.Context) {
	studentID := c.GetString("user_id")

	var req SendComplaintRequest
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

	severity := req.Severity
	if severity == 0 {
		severity = 3
	}

	newComplaint := models.Complaint{
		ComplaintID: fmt.Sprintf("CMP-%s", uuid.New().String()[:8]),
		StudentID:   studentID,
		StudentName: studentName,
		Subject:     req.Subject,
		Message:     req.Message,
		Type:        req.Type,
		Severity:    severity,
		IsAnonymous: req.IsAnonymous,
		Status:      models.ComplaintOpen,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
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
		newComplaint.BusID = bus.BusID
		newComplaint.BusName = bus.BusName
		newComplaint.BusNumber = bus.BusNumber
		newComplaint.DriverID = bus.DriverID
		newComplaint.DriverName = bus.DriverName
	}

	result, err := h.DB.Collection("complaints").InsertOne(context.Background(), newComplaint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit complaint"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newComplaint.ID = oid
	}

	h.Hub.Broadcast(socket.RoomManagement, socket.EventFeedbackReceived, newComplaint)

	c.JSON(http.StatusCreated, gin.H{"success": true, "complaint": newComplaint})
}

// ListComplaints returns complaints for the management console, optionally
// filtered by status or type.
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if complaintType := c.Query("type"); complaintType != "" {
		filter["type"] = complaintType
	}

	cursor, err := h.DB.Collection("complaints").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query complaints"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.Complaint
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode complaints"})
		return
	}
	if items == nil {
		items = []models.Complaint{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": items})
}

// ListDriverComplaints returns complaints about the logged-in driver's bus,
// optionally filtered by status.
func (h *ComplaintHandler) ListDriverComplaints(c *gin.Context) {
	driverID := c.GetString("user_id")

	filter := bson.M{"driverID": driverID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.DB.Collection("complaints").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query complaints"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.Complaint
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode complaints"})
		return
	}
	if items == nil {
		items = []models.Complaint{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": items})
}

type UpdateComplaintStatusRequest struct {
	Status      string `json:"status" binding:"required,oneof=open investigating action_taken resolved closed"`
	Response    string `json:"response"`
	ActionTaken string `json:"actionTaken"`
}

// UpdateComplaintStatus moves a complaint through its workflow. Reaching
// resolved or closed stamps resolvedAt once.
func (h *ComplaintHandler) UpdateComplaintStatus(c *gin.Context) {
	complaintID := c.Param("complaintId")

	var req UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	set := bson.M{"status": req.Status, "updatedAt": time.Now()}
	if req.Response != "" {
		set["adminResponse"] = req.Response
	}
	if req.ActionTaken != "" {
		set["adminActionTaken"] = req.ActionTaken
	}

	result, err := h.DB.Collection("complaints").UpdateOne(context.Background(),
		bson.M{"complaintID": complaintID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update complaint"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
		return
	}

	if req.Status == models.ComplaintResolved || req.Status == models.ComplaintClosed {
		// Only the first resolution sets the timestamp.
		_, err := h.DB.Collection("complaints").UpdateOne(context.Background(),
			bson.M{"complaintID": complaintID, "resolvedAt": nil},
			bson.M{"$set": bson.M{"resolvedAt": time.Now()}})
		if err != nil {
			log.Printf("Failed to stamp resolvedAt for complaint %s: %v", complaintID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Complaint updated"})
}

// MarkComplaintRead flips the admin read flag.
func (h *ComplaintHandler) MarkComplaintRead(c *gin.Context) {
	complaintID := c.Param("complaintId")

	result, err := h.DB.Collection("complaints").UpdateOne(context.Background(),
		bson.M{"complaintID": complaintID},
		bson.M{"$set": bson.M{"readByAdmin": true, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to mark complaint read"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Complaint marked as read"})
}
