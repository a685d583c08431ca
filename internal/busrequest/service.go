package busrequest

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus-bus-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	requestCollection = "bus_requests"
	userCollection    = "users"
	busCollection     = "buses"
)

// Service owns every valid transition of a bus request plus the derived
// passenger roster. All status checks are encoded in the write filters, so
// concurrent actors cannot both win: the loser's update matches nothing and
// the miss is classified after the fact.
type Service struct {
	DB *mongo.Database
}

func NewService(db *mongo.Database) *Service {
	return &Service{DB: db}
}

// Create validates and persists a new pending request for the given student.
// The bus's driver is copied onto the request so driver-side queries never
// need the bus document. The partial unique index on (studentID, busID,
// status=pending) turns a duplicate into a ConflictError even under races.
func (s *Service) Create(ctx context.Context, studentUserID, busID, boardingStop, destination string) (*models.BusRequest, error) {
	if busID == "" || boardingStop == "" || destination == "" {
		return nil, &ValidationError{Message: "Please provide all required fields"}
	}

	var student models.User
	err := s.DB.Collection(userCollection).FindOne(ctx, bson.M{"userID": studentUserID}).Decode(&student)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Entity: "Student", ID: studentUserID}
		}
		return nil, err
	}

	var bus models.Bus
	err = s.DB.Collection(busCollection).FindOne(ctx, bson.M{"busID": busID}).Decode(&bus)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Entity: "Bus", ID: busID}
		}
		return nil, err
	}

	newRequest := models.BusRequest{
		RequestID:    fmt.Sprintf("REQ-%s", uuid.New().String()[:8]),
		StudentID:    student.UserID,
		StudentName:  student.Name,
		StudentCode:  student.StudentID,
		Department:   student.Department,
		BusID:        bus.BusID,
		BusName:      bus.BusName,
		BusNumber:    bus.BusNumber,
		DriverID:     bus.DriverID,
		Status:       models.StatusPending,
		BoardingStop: boardingStop,
		Destination:  destination,
		RequestTime:  time.Now(),
	}

	result, err := s.DB.Collection(requestCollection).InsertOne(ctx, newRequest)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Message: "You already have a pending request for this bus"}
		}
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newRequest.ID = oid
	}

	// Track the request on the student document. Losing this write only
	// degrades the student's own listing, so it is not fatal.
	_, err = s.DB.Collection(userCollection).UpdateOne(ctx,
		bson.M{"userID": student.UserID},
		bson.M{"$push": bson.M{"busRequests": newRequest.RequestID}},
	)
	if err != nil {
		log.Printf("Failed to attach request %s to student %s: %v", newRequest.RequestID, student.UserID, err)
	}

	return &newRequest, nil
}

// Accept transitions pending→accepted for the request's assigned driver.
func (s *Service) Accept(ctx context.Context, requestID, driverID string) (*models.BusRequest, error) {
	return s.respond(ctx, requestID, driverID, models.StatusAccepted, "accept")
}

// Reject transitions pending→rejected for the request's assigned driver.
func (s *Service) Reject(ctx context.Context, requestID, driverID string) (*models.BusRequest, error) {
	return s.respond(ctx, requestID, driverID, models.StatusRejected, "reject")
}

func (s *Service) respond(ctx context.Context, requestID, driverID, newStatus, action string) (*models.BusRequest, error) {
	now := time.Now()
	filter := bson.M{
		"requestID": requestID,
		"driverID":  driverID,
		"status":    models.StatusPending,
	}
	update := bson.M{"$set": bson.M{"status": newStatus, "responseTime": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request models.BusRequest
	err := s.DB.Collection(requestCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, s.classifyMiss(ctx, requestID, driverID, true, models.StatusPending, action)
		}
		return nil, err
	}

	return &request, nil
}

// Board transitions accepted→boarded, stamping the boarding time. Only the
// request's assigned driver may board a passenger.
func (s *Service) Board(ctx context.Context, requestID, driverID string) (*models.BusRequest, error) {
	now := time.Now()
	filter := bson.M{
		"requestID": requestID,
		"driverID":  driverID,
		"status":    models.StatusAccepted,
	}
	update := bson.M{"$set": bson.M{"status": models.StatusBoarded, "boardedTime": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request models.BusRequest
	err := s.DB.Collection(requestCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, s.classifyMiss(ctx, requestID, driverID, true, models.StatusAccepted, "board")
		}
		return nil, err
	}

	return &request, nil
}

// Cancel removes a pending request owned by the acting student and detaches
// it from the student's request list. Cancelled requests are hard-deleted,
// matching how the rest of the system treats cancellation.
func (s *Service) Cancel(ctx context.Context, requestID, studentUserID string) error {
	filter := bson.M{
		"requestID": requestID,
		"studentID": studentUserID,
		"status":    models.StatusPending,
	}

	var request models.BusRequest
	err := s.DB.Collection(requestCollection).FindOneAndDelete(ctx, filter).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return s.classifyMiss(ctx, requestID, studentUserID, false, models.StatusPending, "cancel")
		}
		return err
	}

	_, err = s.DB.Collection(userCollection).UpdateOne(ctx,
		bson.M{"userID": studentUserID},
		bson.M{"$pull": bson.M{"busRequests": requestID}},
	)
	if err != nil {
		log.Printf("Failed to detach request %s from student %s: %v", requestID, studentUserID, err)
	}

	return nil
}

// classifyMiss turns a conditional-write miss into the precise error: the
// request is absent, owned by someone else, or no longer in the expected
// status.
func (s *Service) classifyMiss(ctx context.Context, requestID, actorID string, actorIsDriver bool, expected, action string) error {
	var request models.BusRequest
	err := s.DB.Collection(requestCollection).FindOne(ctx, bson.M{"requestID": requestID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &NotFoundError{Entity: "Request", ID: requestID}
		}
		return err
	}

	owner := request.StudentID
	if actorIsDriver {
		owner = request.DriverID
	}
	if owner != actorID {
		return &AuthorizationError{Message: fmt.Sprintf("Not authorized to %s this request", action)}
	}

	return &StateError{Action: action, Status: request.Status}
}

// PendingForDriver lists a driver's open requests, newest first.
func (s *Service) PendingForDriver(ctx context.Context, driverID string) ([]models.BusRequest, error) {
	filter := bson.M{"driverID": driverID, "status": models.StatusPending}
	opts := options.Find().SetSort(bson.D{{Key: "requestTime", Value: -1}})

	cursor, err := s.DB.Collection(requestCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.BusRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.BusRequest{}
	}
	return requests, nil
}

// ForStudent lists every request owned by a student, newest first.
func (s *Service) ForStudent(ctx context.Context, studentUserID string) ([]models.BusRequest, error) {
	filter := bson.M{"studentID": studentUserID}
	opts := options.Find().SetSort(bson.D{{Key: "requestTime", Value: -1}})

	cursor, err := s.DB.Collection(requestCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.BusRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.BusRequest{}
	}
	return requests, nil
}

// Passengers derives the live roster of a bus: every accepted request,
// ordered by boarding stop. There is no roster table; this is always a fresh
// read.
func (s *Service) Passengers(ctx context.Context, busID string) ([]models.Passenger, error) {
	filter := bson.M{"busID": busID, "status": models.StatusAccepted}
	opts := options.Find().SetSort(bson.D{{Key: "boardingStop", Value: 1}})

	cursor, err := s.DB.Collection(requestCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.BusRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	passengers := make([]models.Passenger, 0, len(requests))
	for _, r := range requests {
		passengers = append(passengers, models.Passenger{
			StudentName:  r.StudentName,
			StudentCode:  r.StudentCode,
			Department:   r.Department,
			BoardingStop: r.BoardingStop,
			Destination:  r.Destination,
			AcceptedAt:   r.ResponseTime,
		})
	}
	return passengers, nil
}

// PassengerCount counts accepted requests for a bus. Same filter as
// Passengers, so the two always agree.
func (s *Service) PassengerCount(ctx context.Context, busID string) (int64, error) {
	filter := bson.M{"busID": busID, "status": models.StatusAccepted}
	return s.DB.Collection(requestCollection).CountDocuments(ctx, filter)
}
