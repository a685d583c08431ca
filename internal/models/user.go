package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values stored on a User document. A user's role never changes after
// creation; there is no endpoint that rewrites it.
const (
	RoleStudent    = "student"
	RoleDriver     = "driver"
	RoleManagement = "management"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userID" json:"userID"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	Role         string             `bson:"role" json:"role"`
	StudentID    string             `bson:"studentID,omitempty" json:"studentID,omitempty"`   // college roll number, students only
	Department   string             `bson:"department,omitempty" json:"department,omitempty"` // students only
	AssignedBus  string             `bson:"assignedBus,omitempty" json:"assignedBus,omitempty"`
	BoardingStop string             `bson:"boardingStop,omitempty" json:"boardingStop,omitempty"`
	Picture      string             `bson:"picture,omitempty" json:"picture,omitempty"`
	BusRequests  []string           `bson:"busRequests,omitempty" json:"busRequests,omitempty"` // requestIDs owned by this student
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
