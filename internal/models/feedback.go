package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback statuses.
const (
	FeedbackPending    = "pending"
	FeedbackResponding = "responding"
	FeedbackResolved   = "resolved"
)

// Feedback is a message from a student, optionally tied to a bus. BusID empty
// means general feedback. Driver and admin keep independent read/response
// state on the same document.
type Feedback struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID     string             `bson:"feedbackID" json:"feedbackID"`
	BusID          string             `bson:"busID,omitempty" json:"busID,omitempty"`
	BusName        string             `bson:"busName,omitempty" json:"busName,omitempty"`
	BusNumber      string             `bson:"busNumber,omitempty" json:"busNumber,omitempty"`
	DriverID       string             `bson:"driverID,omitempty" json:"driverID,omitempty"`
	DriverName     string             `bson:"driverName,omitempty" json:"driverName,omitempty"`
	StudentID      string             `bson:"studentID,omitempty" json:"studentID,omitempty"`
	StudentName    string             `bson:"studentName" json:"studentName"`
	Subject        string             `bson:"subject" json:"subject"`
	Message        string             `bson:"message" json:"message"`
	Rating         int                `bson:"rating,omitempty" json:"rating,omitempty"` // 1..5
	IsAnonymous    bool               `bson:"isAnonymous" json:"isAnonymous"`
	SentToDriver   bool               `bson:"sentToDriver" json:"sentToDriver"`
	SentToAdmin    bool               `bson:"sentToAdmin" json:"sentToAdmin"`
	ReadByDriver   bool               `bson:"readByDriver" json:"readByDriver"`
	ReadByAdmin    bool               `bson:"readByAdmin" json:"readByAdmin"`
	DriverResponse string             `bson:"driverResponse,omitempty" json:"driverResponse,omitempty"`
	AdminResponse  string             `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
