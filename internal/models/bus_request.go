package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusRequest statuses. pending may move to accepted, rejected or cancelled;
// accepted may move to boarded. rejected, cancelled and boarded are terminal.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusBoarded   = "boarded"
	StatusCancelled = "cancelled"
)

type BusRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID    string             `bson:"requestID" json:"requestID"`
	StudentID    string             `bson:"studentID" json:"studentID"` // UserID of the owning student
	StudentName  string             `bson:"studentName" json:"studentName"`
	StudentCode  string             `bson:"studentCode,omitempty" json:"studentCode,omitempty"` // college roll number
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	BusID        string             `bson:"busID" json:"busID"`
	BusName      string             `bson:"busName" json:"busName"`
	BusNumber    string             `bson:"busNumber" json:"busNumber"`
	DriverID     string             `bson:"driverID" json:"driverID"` // copied from the bus at creation
	Status       string             `bson:"status" json:"status"`
	BoardingStop string             `bson:"boardingStop" json:"boardingStop"`
	Destination  string             `bson:"destination" json:"destination"`
	RequestTime  time.Time          `bson:"requestTime" json:"requestTime"`
	ResponseTime *time.Time         `bson:"responseTime,omitempty" json:"responseTime,omitempty"`
	BoardedTime  *time.Time         `bson:"boardedTime,omitempty" json:"boardedTime,omitempty"`
}

// Passenger is one row of a bus's live roster, derived from accepted requests.
type Passenger struct {
	StudentName  string     `json:"studentName"`
	StudentCode  string     `json:"studentCode"`
	Department   string     `json:"department"`
	BoardingStop string     `json:"boardingStop"`
	Destination  string     `json:"destination"`
	AcceptedAt   *time.Time `json:"acceptedAt,omitempty"`
}
