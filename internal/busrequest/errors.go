package busrequest

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an absent bus, request or user.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Entity, e.ID) }

// ConflictError reports a duplicate pending request.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthorizationError reports an actor acting on an entity it does not own.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// StateError reports a transition not allowed from the request's current
// status. The request is left unchanged.
type StateError struct {
	Action string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a request in status %q", e.Action, e.Status)
}

// HTTPStatus maps an engine error onto the response code the API surfaces.
// Unknown errors are treated as server faults.
func HTTPStatus(err error) int {
	var (
		validationErr    *ValidationError
		notFoundErr      *NotFoundError
		conflictErr      *ConflictError
		authorizationErr *AuthorizationError
		stateErr         *StateError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &authorizationErr):
		return http.StatusForbidden
	case errors.As(err, &stateErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
