package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Complaint statuses.
const (
	ComplaintOpen          = "open"
	ComplaintInvestigating = "investigating"
	ComplaintActionTaken   = "action_taken"
	ComplaintResolved      = "resolved"
	ComplaintClosed        = "closed"
)

// Complaint categories.
const (
	ComplaintTypeSchedule    = "schedule"
	ComplaintTypeBehavior    = "behavior"
	ComplaintTypeCleanliness = "cleanliness"
	ComplaintTypeSafety      = "safety"
	ComplaintTypeTechnical   = "technical"
	ComplaintTypeOther       = "other"
)

type Complaint struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ComplaintID      string             `bson:"complaintID" json:"complaintID"`
	BusID            string             `bson:"busID,omitempty" json:"busID,omitempty"`
	BusName          string             `bson:"busName,omitempty" json:"busName,omitempty"`
	BusNumber        string             `bson:"busNumber,omitempty" json:"busNumber,omitempty"`
	DriverID         string             `bson:"driverID,omitempty" json:"driverID,omitempty"`
	DriverName       string             `bson:"driverName,omitempty" json:"driverName,omitempty"`
	StudentID        string             `bson:"studentID,omitempty" json:"studentID,omitempty"`
	StudentName      string             `bson:"studentName" json:"studentName"`
	Subject          string             `bson:"subject" json:"subject"`
	Message          string             `bson:"message" json:"message"`
	Type             string             `bson:"type" json:"type"`
	Severity         int                `bson:"severity" json:"severity"` // 1..5
	IsAnonymous      bool               `bson:"isAnonymous" json:"isAnonymous"`
	ReadByAdmin      bool               `bson:"readByAdmin" json:"readByAdmin"`
	AdminResponse    string             `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
	AdminActionTaken string             `bson:"adminActionTaken,omitempty" json:"adminActionTaken,omitempty"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt       *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}
