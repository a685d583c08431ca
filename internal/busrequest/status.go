package busrequest

import "campus-bus-api-server/internal/models"

// transitions is the full state machine of a bus request. Statuses with no
// entry are terminal.
var transitions = map[string][]string{
	models.StatusPending:  {models.StatusAccepted, models.StatusRejected, models.StatusCancelled},
	models.StatusAccepted: {models.StatusBoarded},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}
