package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus-bus-api-server/internal/auth"
	"campus-bus-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type seedBus struct {
	busID      string
	busName    string
	busNumber  string
	driverName string
	route      string
	capacity   int
	pin        string
	location   string
	schedule   []models.ScheduleEntry
}

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

var seedFleet = []seedBus{
	{
		busID: "KBUS001", busName: "8th Block Express", busNumber: "TN67AB1001",
		driverName: "Rajesh Kumar", route: "8th Block → Ladies Hostel",
		capacity: 50, pin: "1111", location: "8th Block",
		schedule: []models.ScheduleEntry{
			{Time: "07:30 AM", Departure: "8th Block", Arrival: "Ladies Hostel", Duration: "15 mins", Days: weekdays},
			{Time: "06:00 PM", Departure: "Ladies Hostel", Arrival: "8th Block", Duration: "15 mins", Days: weekdays},
		},
	},
	{
		busID: "KBUS002", busName: "Boys Hostel Shuttle", busNumber: "TN67AB1002",
		driverName: "Suresh Reddy", route: "Boys Hostel → Main Gate",
		capacity: 45, pin: "2222", location: "Boys Hostel",
		schedule: []models.ScheduleEntry{
			{Time: "08:00 AM", Departure: "Boys Hostel", Arrival: "Main Gate", Duration: "10 mins", Days: weekdays},
			{Time: "05:30 PM", Departure: "Main Gate", Arrival: "Boys Hostel", Duration: "10 mins", Days: weekdays},
		},
	},
	{
		busID: "KBUS003", busName: "Main Gate Express", busNumber: "TN67AB1003",
		driverName: "Kumar Swami", route: "Main Gate → Hostel",
		capacity: 50, pin: "3333", location: "Main Gate",
		schedule: []models.ScheduleEntry{
			{Time: "08:15 AM", Departure: "Main Gate", Arrival: "Hostel Complex", Duration: "12 mins", Days: weekdays},
			{Time: "05:45 PM", Departure: "Hostel Complex", Arrival: "Main Gate", Duration: "12 mins", Days: weekdays},
		},
	},
	{
		busID: "KBUS004", busName: "Ladies Hostel Express", busNumber: "TN67AB1004",
		driverName: "Priya Devi", route: "Ladies Hostel → 8th Block",
		capacity: 45, pin: "4444", location: "Ladies Hostel",
		schedule: []models.ScheduleEntry{
			{Time: "07:45 AM", Departure: "Ladies Hostel", Arrival: "8th Block", Duration: "15 mins", Days: weekdays},
			{Time: "06:15 PM", Departure: "8th Block", Arrival: "Ladies Hostel", Duration: "15 mins", Days: weekdays},
		},
	},
}

// Seed creates the management account and the bus fleet (with one driver user
// per bus) if the database is empty. Re-running it is a no-op.
func Seed(db *mongo.Database) error {
	userCollection := db.Collection("users")
	busCollection := db.Collection("buses")

	managementEmail := "management@campus.edu"

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": managementEmail})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Management account already exists. Seeding skipped.")
		return nil
	}

	log.Println("Empty database. Seeding management account and bus fleet...")

	hashedPassword, err := auth.HashPassword("management123")
	if err != nil {
		return err
	}

	management := models.User{
		UserID:    fmt.Sprintf("mgmt-%s", uuid.New().String()[:8]),
		Name:      "Transport Office",
		Email:     managementEmail,
		Password:  hashedPassword,
		Role:      models.RoleManagement,
		CreatedAt: time.Now(),
	}
	if _, err := userCollection.InsertOne(context.Background(), management); err != nil {
		return err
	}

	for i, sb := range seedFleet {
		hashedPIN, err := auth.HashPassword(sb.pin)
		if err != nil {
			return err
		}

		driver := models.User{
			UserID:      fmt.Sprintf("driver-%s", uuid.New().String()[:8]),
			Name:        sb.driverName,
			Email:       fmt.Sprintf("driver%d@campus.edu", i+1),
			Password:    hashedPIN,
			Role:        models.RoleDriver,
			AssignedBus: sb.busID,
			CreatedAt:   time.Now(),
		}
		if _, err := userCollection.InsertOne(context.Background(), driver); err != nil {
			return err
		}

		bus := models.Bus{
			BusID:           sb.busID,
			BusName:         sb.busName,
			BusNumber:       sb.busNumber,
			PlateNumber:     sb.busNumber,
			DriverName:      sb.driverName,
			DriverID:        driver.UserID,
			Route:           sb.route,
			Capacity:        sb.capacity,
			PIN:             hashedPIN,
			CurrentLocation: sb.location,
			IsActive:        true,
			Schedule:        sb.schedule,
			CreatedAt:       time.Now(),
		}
		if _, err := busCollection.InsertOne(context.Background(), bus); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d buses with drivers.", len(seedFleet))
	return nil
}
