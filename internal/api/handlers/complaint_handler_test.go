package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func complaintDoc(complaintID, driverID, status string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "complaintID", Value: complaintID},
		{Key: "busID", Value: "KBUS001"},
		{Key: "busName", Value: "8th Block Express"},
		{Key: "driverID", Value: driverID},
		{Key: "studentID", Value: "student-1"},
		{Key: "studentName", Value: "Alice"},
		{Key: "subject", Value: "Late departure"},
		{Key: "message", Value: "Bus left 20 minutes late"},
		{Key: "type", Value: "schedule"},
		{Key: "severity", Value: 3},
		{Key: "status", Value: status},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(time.Now())},
	}
}

func complaintRouter(h *ComplaintHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	inject := func(c *gin.Context) { c.Set("user_id", userID) }
	router.GET("/driver/complaints", inject, h.ListDriverComplaints)
	router.POST("/management/complaints/:complaintId/status", inject, h.UpdateComplaintStatus)
	return router
}

func TestListDriverComplaints(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lists own complaints", func(mt *mtest.T) {
		h := &ComplaintHandler{DB: mt.DB}
		ns := mt.DB.Name() + ".complaints"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			complaintDoc("CMP-1", "driver-1", "open")))

		req := httptest.NewRequest(http.MethodGet, "/driver/complaints", nil)
		w := httptest.NewRecorder()
		complaintRouter(h, "driver-1").ServeHTTP(w, req)

		assert.Equal(mt.T, http.StatusOK, w.Code)
		assert.Contains(mt.T, w.Body.String(), "CMP-1")
		assert.Contains(mt.T, w.Body.String(), "Late departure")
	})

	mt.Run("empty inbox serializes as array", func(mt *mtest.T) {
		h := &ComplaintHandler{DB: mt.DB}
		ns := mt.DB.Name() + ".complaints"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		req := httptest.NewRequest(http.MethodGet, "/driver/complaints", nil)
		w := httptest.NewRecorder()
		complaintRouter(h, "driver-1").ServeHTTP(w, req)

		assert.Equal(mt.T, http.StatusOK, w.Code)
		assert.Contains(mt.T, w.Body.String(), `"complaints":[]`)
	})
}

func TestUpdateComplaintStatusResolved(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stamps resolvedAt", func(mt *mtest.T) {
		h := &ComplaintHandler{DB: mt.DB}

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		body := strings.NewReader(`{"status":"resolved","response":"Driver counselled"}`)
		req := httptest.NewRequest(http.MethodPost, "/management/complaints/CMP-1/status", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		complaintRouter(h, "mgmt-1").ServeHTTP(w, req)

		require.Equal(mt.T, http.StatusOK, w.Code)
		assert.Contains(mt.T, w.Body.String(), "Complaint updated")
	})
}
