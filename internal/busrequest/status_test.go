package busrequest

import (
	"net/http"
	"testing"

	"campus-bus-api-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allStatuses := []string{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusRejected,
		models.StatusBoarded,
		models.StatusCancelled,
	}

	allowed := map[[2]string]bool{
		{models.StatusPending, models.StatusAccepted}:  true,
		{models.StatusPending, models.StatusRejected}:  true,
		{models.StatusPending, models.StatusCancelled}: true,
		{models.StatusAccepted, models.StatusBoarded}:  true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			want := allowed[[2]string{from, to}]
			assert.Equalf(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusAccepted))
	assert.True(t, IsTerminal(models.StatusRejected))
	assert.True(t, IsTerminal(models.StatusBoarded))
	assert.True(t, IsTerminal(models.StatusCancelled))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Message: "missing field"}, http.StatusBadRequest},
		{"not found", &NotFoundError{Entity: "Bus", ID: "KBUS999"}, http.StatusNotFound},
		{"conflict", &ConflictError{Message: "duplicate"}, http.StatusConflict},
		{"authorization", &AuthorizationError{Message: "not yours"}, http.StatusForbidden},
		{"state", &StateError{Action: "accept", Status: "accepted"}, http.StatusConflict},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
