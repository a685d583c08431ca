package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is the last reported GPS position of a bus.
type Coordinates struct {
	Lat         float64    `bson:"lat" json:"lat"`
	Lon         float64    `bson:"lon" json:"lon"`
	LastUpdated *time.Time `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
}

// RoutePoint is a named stop on the route (boarding or destination side).
type RoutePoint struct {
	Name string  `bson:"name" json:"name"`
	Lat  float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lon  float64 `bson:"lon,omitempty" json:"lon,omitempty"`
}

// ScheduleEntry is one weekday-tagged departure in a bus's timetable.
type ScheduleEntry struct {
	Time      string   `bson:"time" json:"time"` // e.g. "07:30 AM"
	Departure string   `bson:"departure" json:"departure"`
	Arrival   string   `bson:"arrival" json:"arrival"`
	Duration  string   `bson:"duration,omitempty" json:"duration,omitempty"`
	Days      []string `bson:"days" json:"days"` // e.g. ["Mon", "Tue"]
}

// ActivityEntry is one record in the bus's recent-activity ring. The ring
// keeps at most the 5 newest entries, newest first.
type ActivityEntry struct {
	Action    string    `bson:"action" json:"action"`
	Details   string    `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// MediaPointer references an uploaded document or photo on S3.
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"`
}

type Bus struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusID              string             `bson:"busID" json:"busID"` // unique business key, e.g. "KBUS001"
	BusName            string             `bson:"busName" json:"busName"`
	BusNumber          string             `bson:"busNumber" json:"busNumber"`
	PlateNumber        string             `bson:"plateNumber" json:"plateNumber"`
	DriverName         string             `bson:"driverName" json:"driverName"`
	DriverID           string             `bson:"driverID,omitempty" json:"driverID,omitempty"` // UserID of the assigned driver
	Route              string             `bson:"route" json:"route"`
	Capacity           int                `bson:"capacity" json:"capacity"`
	PIN                string             `bson:"pin" json:"-"` // bcrypt hash, used for driver login
	CurrentLocation    string             `bson:"currentLocation" json:"currentLocation"`
	CurrentCoordinates Coordinates        `bson:"currentCoordinates,omitempty" json:"currentCoordinates"`
	BoardingPoint      RoutePoint         `bson:"boardingPoint,omitempty" json:"boardingPoint"`
	DestinationPoint   RoutePoint         `bson:"destinationPoint,omitempty" json:"destinationPoint"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	Photo              *MediaPointer      `bson:"photo,omitempty" json:"photo,omitempty"`
	Schedule           []ScheduleEntry    `bson:"schedule,omitempty" json:"schedule"`
	RecentActivity     []ActivityEntry    `bson:"recentActivity,omitempty" json:"recentActivity"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}
