package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"campus-bus-api-server/internal/auth"
	"campus-bus-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserHandler struct {
	DB         *mongo.Database
	S3Uploader PhotoUploader
}

type SignupStudentRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	StudentID  string `json:"studentId" binding:"required"`
	Department string `json:"department" binding:"required"`
}

// SignupStudent registers a new student account. Drivers and management are
// provisioned by seeding or by management, never by self-signup.
func (h *UserHandler) SignupStudent(c *gin.Context) {
	var req SignupStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process password"})
		return
	}

	newUser := models.User{
		UserID:     fmt.Sprintf("student-%s", uuid.New().String()[:8]),
		Name:       req.Name,
		Email:      req.Email,
		Password:   hashedPassword,
		Role:       models.RoleStudent,
		StudentID:  req.StudentID,
		Department: req.Department,
		CreatedAt:  time.Now(),
	}

	result, err := h.DB.Collection("users").InsertOne(context.Background(), newUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create account"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newUser.ID = oid
	}

	token, err := auth.GenerateJWT(newUser.UserID, newUser.Email, newUser.Role, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": newUser})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Driver alternative: log in with the bus's ID and access PIN.
	BusID string `json:"busId"`
	PIN   string `json:"pin"`
}

// Login issues a JWT. Students and management authenticate with email and
// password; drivers may instead present their bus ID and access PIN.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.BusID != "" || req.PIN != "" {
		h.loginDriverByPIN(c, req)
		return
	}

	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide email and password"})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(user.UserID, user.Email, user.Role, user.AssignedBus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

func (h *UserHandler) loginDriverByPIN(c *gin.Context, req LoginRequest) {
	if req.BusID == "" || req.PIN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide busId and pin"})
		return
	}

	var bus models.Bus
	err := h.DB.Collection("buses").FindOne(context.Background(), bson.M{"busID": req.BusID}).Decode(&bus)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid bus or PIN"})
		return
	}

	if !auth.CheckPasswordHash(req.PIN, bus.PIN) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid bus or PIN"})
		return
	}

	var driver models.User
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"userID": bus.DriverID}).Decode(&driver)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No driver is assigned to this bus"})
		return
	}

	token, err := auth.GenerateJWT(driver.UserID, driver.Email, driver.Role, bus.BusID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": driver, "bus": bus})
}

type UpdateProfileRequest struct {
	Name         string `json:"name"`
	Department   string `json:"department"`
	BoardingStop string `json:"boardingStop"`
}

// UpdateProfile lets the logged-in user edit their own mutable fields. Role
// is deliberately not among them.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Department != "" {
		update["department"] = req.Department
	}
	if req.BoardingStop != "" {
		update["boardingStop"] = req.BoardingStop
	}
	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nothing to update"})
		return
	}

	_, err := h.DB.Collection("users").UpdateOne(context.Background(), bson.M{"userID": userID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully"})
}

// UploadProfilePhoto stores the logged-in driver's profile photo on S3 and
// points the user's picture field at it.
func (h *UserHandler) UploadProfilePhoto(c *gin.Context) {
	userID := c.GetString("user_id")

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

	objectKey := fmt.Sprintf("drivers/%s/%s-%s", userID, uuid.New().String()[:8], fileHeader.Filename)
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload photo"})
		return
	}

	result, err := h.DB.Collection("users").UpdateOne(context.Background(),
		bson.M{"userID": userID}, bson.M{"$set": bson.M{"picture": url}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save photo"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "picture": url})
}

// GetProfile returns the logged-in user's document.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"userID": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
