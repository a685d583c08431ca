package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"campus-bus-api-server/internal/auth"
	"campus-bus-api-server/internal/models"
	"campus-bus-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BusHandler struct {
	DB         *mongo.Database
	Hub        *socket.Hub
	S3Uploader PhotoUploader
}

type CreateBusRequest struct {
	BusID       string                 `json:"busId" binding:"required"`
	BusName     string                 `json:"busName" binding:"required"`
	BusNumber   string                 `json:"busNumber" binding:"required"`
	PlateNumber string                 `json:"plateNumber" binding:"required"`
	DriverName  string                 `json:"driverName" binding:"required"`
	DriverID    string                 `json:"driverId"`
	Route       string                 `json:"route" binding:"required"`
	Capacity    int                    `json:"capacity" binding:"required,min=1"`
	PIN         string                 `json:"pin" binding:"required,min=4"`
	Notes       string                 `json:"notes"`
	Schedule    []models.ScheduleEntry `json:"schedule"`
}

// CreateBus adds a fleet unit. The access PIN is stored bcrypt-hashed.
func (h *BusHandler) CreateBus(c *gin.Context) {
	var req CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	collection := h.DB.Collection("buses")

	count, err := collection.CountDocuments(context.Background(), bson.M{"busID": req.BusID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for bus"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Bus with this ID already exists"})
		return
	}

	hashedPIN, err := auth.HashPassword(req.PIN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process PIN"})
		return
	}

	newBus := models.Bus{
		BusID:           req.BusID,
		BusName:         req.BusName,
		BusNumber:       req.BusNumber,
		PlateNumber:     req.PlateNumber,
		DriverName:      req.DriverName,
		DriverID:        req.DriverID,
		Route:           req.Route,
		Capacity:        req.Capacity,
		PIN:             hashedPIN,
		CurrentLocation: "Not specified",
		IsActive:        true,
		Notes:           req.Notes,
		Schedule:        req.Schedule,
		RecentActivity: []models.ActivityEntry{
			{Action: "Bus Added", Details: "Bus registered in the fleet", Timestamp: time.Now()},
		},
		CreatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newBus)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Bus with this ID already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create bus"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newBus.ID = oid
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "bus": newBus})
}

// GetAllBuses lists the fleet. Students see only active buses.
func (h *BusHandler) GetAllBuses(c *gin.Context) {
	filter := bson.M{}
	if c.GetString("user_role") == models.RoleStudent {
		filter["isActive"] = true
	}

	cursor, err := h.DB.Collection("buses").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query buses"})
		return
	}
	defer cursor.Close(context.Background())

	var buses []models.Bus
	if err = cursor.All(context.Background(), &buses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode buses"})
		return
	}
	if buses == nil {
		buses = []models.Bus{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "buses": buses})
}

// GetBusByID returns one bus by its business key.
func (h *BusHandler) GetBusByID(c *gin.Context) {
	busID := c.Param("busId")

	var bus models.Bus
	err := h.DB.Collection("buses").FindOne(context.Background(), bson.M{"busID": busID}).Decode(&bus)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve bus"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bus": bus})
}

type UpdateBusRequest struct {
	BusName     string                 `json:"busName"`
	BusNumber   string                 `json:"busNumber"`
	PlateNumber string                 `json:"plateNumber"`
	DriverName  string                 `json:"driverName"`
	DriverID    string                 `json:"driverId"`
	Route       string                 `json:"route"`
	Capacity    int                    `json:"capacity"`
	PIN         string                 `json:"pin"`
	Notes       string                 `json:"notes"`
	IsActive    *bool                  `json:"isActive"`
	Schedule    []models.ScheduleEntry `json:"schedule"`
}

// UpdateBus edits fleet data. Changing the PIN re-hashes it. The activity
// ring is appended atomically, keeping the 5 newest entries.
func (h *BusHandler) UpdateBus(c *gin.Context) {
	busID := c.Param("busId")

	var req UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	set := bson.M{}
	if req.BusName != "" {
		set["busName"] = req.BusName
	}
	if req.BusNumber != "" {
		set["busNumber"] = req.BusNumber
	}
	if req.PlateNumber != "" {
		set["plateNumber"] = req.PlateNumber
	}
	if req.DriverName != "" {
		set["driverName"] = req.DriverName
	}
	if req.DriverID != "" {
		set["driverID"] = req.DriverID
	}
	if req.Route != "" {
		set["route"] = req.Route
	}
	if req.Capacity > 0 {
		set["capacity"] = req.Capacity
	}
	if req.Notes != "" {
		set["notes"] = req.Notes
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if req.Schedule != nil {
		set["schedule"] = req.Schedule
	}
	if req.PIN != "" {
		hashedPIN, err := auth.HashPassword(req.PIN)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process PIN"})
			return
		}
		set["pin"] = hashedPIN
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nothing to update"})
		return
	}

	update := bson.M{
		"$set":  set,
		"$push": activityPush("Bus Updated", "Fleet details edited by management"),
	}

	result, err := h.DB.Collection("buses").UpdateOne(context.Background(), bson.M{"busID": busID}, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update bus"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus updated successfully"})
}

// DeleteBus removes a fleet unit.
func (h *BusHandler) DeleteBus(c *gin.Context) {
	busID := c.Param("busId")

	result, err := h.DB.Collection("buses").DeleteOne(context.Background(), bson.M{"busID": busID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete bus"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus deleted successfully"})
}

type UpdateLocationRequest struct {
	Lat                  float64 `json:"lat" binding:"required"`
	Lon                  float64 `json:"lon" binding:"required"`
	BoardingPointName    string  `json:"boardingPointName"`
	BoardingLat          float64 `json:"boardingLat"`
	BoardingLon          float64 `json:"boardingLon"`
	DestinationPointName string  `json:"destinationPointName"`
	DestinationLat       float64 `json:"destinationLat"`
	DestinationLon       float64 `json:"destinationLon"`
}

// UpdateLocation lets a driver post the bus's live position. The write is a
// single update: coordinate set plus activity append, no read-modify-write.
// Students in the live room get a busLocationUpdate push.
func (h *BusHandler) UpdateLocation(c *gin.Context) {
	driverID := c.GetString("user_id")
	busID := c.Param("busId")

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	now := time.Now()
	set := bson.M{
		"currentCoordinates": models.Coordinates{Lat: req.Lat, Lon: req.Lon, LastUpdated: &now},
		"currentLocation":    "Updated via map",
	}
	if req.BoardingLat != 0 && req.BoardingLon != 0 {
		name := req.BoardingPointName
		if name == "" {
			name = "Boarding Point"
		}
		set["boardingPoint"] = models.RoutePoint{Name: name, Lat: req.BoardingLat, Lon: req.BoardingLon}
	}
	if req.DestinationLat != 0 && req.DestinationLon != 0 {
		name := req.DestinationPointName
		if name == "" {
			name = "Destination"
		}
		set["destinationPoint"] = models.RoutePoint{Name: name, Lat: req.DestinationLat, Lon: req.DestinationLon}
	}

	update := bson.M{
		"$set":  set,
		"$push": activityPush("Location Updated", fmt.Sprintf("Current location updated to coordinates (%.5f, %.5f)", req.Lat, req.Lon)),
	}

	result, err := h.DB.Collection("buses").UpdateOne(context.Background(),
		bson.M{"busID": busID, "driverID": driverID}, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update location"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to update this bus"})
		return
	}

	h.Hub.Broadcast(socket.RoomStudent, socket.EventBusLocationUpdate, gin.H{
		"busId":     busID,
		"lat":       req.Lat,
		"lon":       req.Lon,
		"updatedAt": now,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Location data updated successfully"})
}

// GetBusLocation returns the last reported position of one bus.
func (h *BusHandler) GetBusLocation(c *gin.Context) {
	busID := c.Param("busId")

	var bus models.Bus
	err := h.DB.Collection("buses").FindOne(context.Background(), bson.M{"busID": busID}).Decode(&bus)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve bus"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"busId":            bus.BusID,
		"coordinates":      bus.CurrentCoordinates,
		"boardingPoint":    bus.BoardingPoint,
		"destinationPoint": bus.DestinationPoint,
	})
}

// GetAllBusLocations returns positions of every active bus, for the live map.
func (h *BusHandler) GetAllBusLocations(c *gin.Context) {
	cursor, err := h.DB.Collection("buses").Find(context.Background(), bson.M{"isActive": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query buses"})
		return
	}
	defer cursor.Close(context.Background())

	var buses []models.Bus
	if err = cursor.All(context.Background(), &buses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode buses"})
		return
	}

	locations := make([]gin.H, 0, len(buses))
	for _, bus := range buses {
		locations = append(locations, gin.H{
			"busId":       bus.BusID,
			"busName":     bus.BusName,
			"route":       bus.Route,
			"coordinates": bus.CurrentCoordinates,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "locations": locations})
}

// UploadBusPhoto stores a fleet photo on S3 and points the bus at it.
func (h *BusHandler) UploadBusPhoto(c *gin.Context) {
	busID := c.Param("busId")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A photo file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectKey := fmt.Sprintf("buses/%s/%s-%s", busID, uuid.New().String()[:8], fileHeader.Filename)
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload photo"})
		return
	}

	photo := models.MediaPointer{
		ID:       uuid.New().String(),
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: contentType,
	}

	result, err := h.DB.Collection("buses").UpdateOne(context.Background(),
		bson.M{"busID": busID}, bson.M{"$set": bson.M{"photo": photo}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save photo"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "photo": photo})
}

type AssignBusRequest struct {
	StudentUserID string `json:"studentUserId" binding:"required"`
	BusID         string `json:"busId" binding:"required"`
	BoardingStop  string `json:"boardingStop"`
}

// AssignStudentBus pins a student to a bus (management action).
func (h *BusHandler) AssignStudentBus(c *gin.Context) {
	var req AssignBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	count, err := h.DB.Collection("buses").CountDocuments(context.Background(), bson.M{"busID": req.BusID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for bus"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Bus not found"})
		return
	}

	set := bson.M{"assignedBus": req.BusID}
	if req.BoardingStop != "" {
		set["boardingStop"] = req.BoardingStop
	}

	result, err := h.DB.Collection("users").UpdateOne(context.Background(),
		bson.M{"userID": req.StudentUserID, "role": models.RoleStudent},
		bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to assign bus"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Student not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus assigned successfully"})
}

// GetStudents lists student accounts for the management console.
func (h *BusHandler) GetStudents(c *gin.Context) {
	cursor, err := h.DB.Collection("users").Find(context.Background(), bson.M{"role": models.RoleStudent})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query students"})
		return
	}
	defer cursor.Close(context.Background())

	var students []models.User
	if err = cursor.All(context.Background(), &students); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode students"})
		return
	}
	if students == nil {
		students = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "students": students})
}

// activityPush builds the $push clause that prepends one entry to the
// recentActivity ring and trims it to the 5 newest.
func activityPush(action, details string) bson.M {
	return bson.M{
		"recentActivity": bson.M{
			"$each":     []models.ActivityEntry{{Action: action, Details: details, Timestamp: time.Now()}},
			"$position": 0,
			"$slice":    5,
		},
	}
}
