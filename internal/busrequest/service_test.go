package busrequest

import (
	"context"
	"testing"
	"time"

	"campus-bus-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func studentDoc(userID string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "userID", Value: userID},
		{Key: "name", Value: "Alice"},
		{Key: "email", Value: "alice@campus.edu"},
		{Key: "role", Value: "student"},
		{Key: "studentID", Value: "S001"},
		{Key: "department", Value: "Computer Science"},
	}
}

func busDoc(busID, driverID string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "busID", Value: busID},
		{Key: "busName", Value: "8th Block Express"},
		{Key: "busNumber", Value: "TN67AB1001"},
		{Key: "driverID", Value: driverID},
		{Key: "driverName", Value: "Rajesh Kumar"},
		{Key: "capacity", Value: 50},
	}
}

func requestDoc(requestID, studentID, busID, driverID, status string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "requestID", Value: requestID},
		{Key: "studentID", Value: studentID},
		{Key: "studentName", Value: "Alice"},
		{Key: "busID", Value: busID},
		{Key: "driverID", Value: driverID},
		{Key: "status", Value: status},
		{Key: "boardingStop", Value: "Gate 2"},
		{Key: "destination", Value: "Main Campus"},
		{Key: "requestTime", Value: primitive.NewDateTimeFromTime(time.Now())},
	}
}

func TestServiceCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		userNS := mt.DB.Name() + ".users"
		busNS := mt.DB.Name() + ".buses"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, userNS, mtest.FirstBatch, studentDoc("student-1")),
			mtest.CreateCursorResponse(0, busNS, mtest.FirstBatch, busDoc("KBUS001", "driver-1")),
			mtest.CreateSuccessResponse(), // insert request
			mtest.CreateSuccessResponse(), // push onto student.busRequests
		)

		request, err := svc.Create(context.Background(), "student-1", "KBUS001", "Gate 2", "Main Campus")
		require.NoError(mt.T, err)
		assert.Equal(mt.T, models.StatusPending, request.Status)
		assert.Equal(mt.T, "driver-1", request.DriverID, "driver must be copied from the bus")
		assert.Equal(mt.T, "student-1", request.StudentID)
		assert.Equal(mt.T, "Alice", request.StudentName)
		assert.Equal(mt.T, "8th Block Express", request.BusName)
		assert.NotEmpty(mt.T, request.RequestID)
		assert.False(mt.T, request.RequestTime.IsZero())
		assert.Nil(mt.T, request.ResponseTime)
	})

	mt.Run("missing fields", func(mt *mtest.T) {
		svc := NewService(mt.DB)

		_, err := svc.Create(context.Background(), "student-1", "KBUS001", "", "Main Campus")
		var validationErr *ValidationError
		require.ErrorAs(mt.T, err, &validationErr)
	})

	mt.Run("bus not found", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		userNS := mt.DB.Name() + ".users"
		busNS := mt.DB.Name() + ".buses"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, userNS, mtest.FirstBatch, studentDoc("student-1")),
			mtest.CreateCursorResponse(0, busNS, mtest.FirstBatch),
		)

		_, err := svc.Create(context.Background(), "student-1", "KBUS999", "Gate 2", "Main Campus")
		var notFoundErr *NotFoundError
		require.ErrorAs(mt.T, err, &notFoundErr)
		assert.Equal(mt.T, "Bus", notFoundErr.Entity)
	})

	mt.Run("duplicate pending request", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		userNS := mt.DB.Name() + ".users"
		busNS := mt.DB.Name() + ".buses"

		// The partial unique index rejects the second pending insert, which
		// is exactly what a concurrent duplicate Create hits.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, userNS, mtest.FirstBatch, studentDoc("student-1")),
			mtest.CreateCursorResponse(0, busNS, mtest.FirstBatch, busDoc("KBUS001", "driver-1")),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
		)

		_, err := svc.Create(context.Background(), "student-1", "KBUS001", "Gate 2", "Main Campus")
		var conflictErr *ConflictError
		require.ErrorAs(mt.T, err, &conflictErr)
	})
}

func TestServiceAccept(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		svc := NewService(mt.DB)

		updated := requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusAccepted)
		updated = append(updated, bson.E{Key: "responseTime", Value: primitive.NewDateTimeFromTime(time.Now())})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		request, err := svc.Accept(context.Background(), "REQ-1", "driver-1")
		require.NoError(mt.T, err)
		assert.Equal(mt.T, models.StatusAccepted, request.Status)
		assert.NotNil(mt.T, request.ResponseTime)
	})

	mt.Run("request not found", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch),
		)

		_, err := svc.Accept(context.Background(), "REQ-missing", "driver-1")
		var notFoundErr *NotFoundError
		require.ErrorAs(mt.T, err, &notFoundErr)
	})

	mt.Run("wrong driver", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch,
				requestDoc("REQ-1", "student-1", "KBUS001", "driver-2", models.StatusPending)),
		)

		_, err := svc.Accept(context.Background(), "REQ-1", "driver-1")
		var authErr *AuthorizationError
		require.ErrorAs(mt.T, err, &authErr)
	})

	mt.Run("already accepted", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch,
				requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusAccepted)),
		)

		_, err := svc.Accept(context.Background(), "REQ-1", "driver-1")
		var stateErr *StateError
		require.ErrorAs(mt.T, err, &stateErr)
		assert.Equal(mt.T, models.StatusAccepted, stateErr.Status)
		assert.Equal(mt.T, "accept", stateErr.Action)
	})
}

func TestServiceReject(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		svc := NewService(mt.DB)

		updated := requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusRejected)
		updated = append(updated, bson.E{Key: "responseTime", Value: primitive.NewDateTimeFromTime(time.Now())})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		request, err := svc.Reject(context.Background(), "REQ-1", "driver-1")
		require.NoError(mt.T, err)
		assert.Equal(mt.T, models.StatusRejected, request.Status)
	})
}

func TestServiceBoard(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		svc := NewService(mt.DB)

		updated := requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusBoarded)
		updated = append(updated, bson.E{Key: "boardedTime", Value: primitive.NewDateTimeFromTime(time.Now())})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		request, err := svc.Board(context.Background(), "REQ-1", "driver-1")
		require.NoError(mt.T, err)
		assert.Equal(mt.T, models.StatusBoarded, request.Status)
		assert.NotNil(mt.T, request.BoardedTime)
	})

	mt.Run("still pending", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch,
				requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusPending)),
		)

		_, err := svc.Board(context.Background(), "REQ-1", "driver-1")
		var stateErr *StateError
		require.ErrorAs(mt.T, err, &stateErr)
		assert.Equal(mt.T, models.StatusPending, stateErr.Status)
	})
}

func TestServiceCancel(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		svc := NewService(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value",
				Value: requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusPending)}),
			mtest.CreateSuccessResponse(), // pull from student.busRequests
		)

		err := svc.Cancel(context.Background(), "REQ-1", "student-1")
		require.NoError(mt.T, err)
	})

	mt.Run("not the owner", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch,
				requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusPending)),
		)

		err := svc.Cancel(context.Background(), "REQ-1", "student-2")
		var authErr *AuthorizationError
		require.ErrorAs(mt.T, err, &authErr)
	})

	mt.Run("no longer pending", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch,
				requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusAccepted)),
		)

		err := svc.Cancel(context.Background(), "REQ-1", "student-1")
		var stateErr *StateError
		require.ErrorAs(mt.T, err, &stateErr)
	})
}

func TestServiceRoster(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("passengers from accepted requests", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		first := requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusAccepted)
		first = append(first, bson.E{Key: "responseTime", Value: primitive.NewDateTimeFromTime(time.Now())})
		second := requestDoc("REQ-2", "student-2", "KBUS001", "driver-1", models.StatusAccepted)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, reqNS, mtest.FirstBatch, first),
			mtest.CreateCursorResponse(0, reqNS, mtest.NextBatch, second),
		)

		passengers, err := svc.Passengers(context.Background(), "KBUS001")
		require.NoError(mt.T, err)
		require.Len(mt.T, passengers, 2)
		assert.Equal(mt.T, "Alice", passengers[0].StudentName)
		assert.Equal(mt.T, "Gate 2", passengers[0].BoardingStop)
		assert.NotNil(mt.T, passengers[0].AcceptedAt)
	})

	mt.Run("empty roster", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch))

		passengers, err := svc.Passengers(context.Background(), "KBUS001")
		require.NoError(mt.T, err)
		assert.Empty(mt.T, passengers)
		assert.NotNil(mt.T, passengers, "roster must serialize as [] rather than null")
	})

	mt.Run("passenger count", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}))

		count, err := svc.PassengerCount(context.Background(), "KBUS001")
		require.NoError(mt.T, err)
		assert.Equal(mt.T, int64(2), count)
	})
}

func TestServicePendingForDriver(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lists pending only", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch,
			requestDoc("REQ-1", "student-1", "KBUS001", "driver-1", models.StatusPending)))

		requests, err := svc.PendingForDriver(context.Background(), "driver-1")
		require.NoError(mt.T, err)
		require.Len(mt.T, requests, 1)
		assert.Equal(mt.T, models.StatusPending, requests[0].Status)
	})

	mt.Run("no requests", func(mt *mtest.T) {
		svc := NewService(mt.DB)
		reqNS := mt.DB.Name() + ".bus_requests"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, reqNS, mtest.FirstBatch))

		requests, err := svc.PendingForDriver(context.Background(), "driver-1")
		require.NoError(mt.T, err)
		assert.NotNil(mt.T, requests)
		assert.Empty(mt.T, requests)
	})
}
