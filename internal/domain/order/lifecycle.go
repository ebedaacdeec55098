package order

import (
	appErrors "cargo-tracker/pkg/errors"
	"fmt"
)

// State machine for order status transitions. Orders are decided once:
// a pending order is accepted, rejected or withdrawn, and that is final.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {
		StatusAccepted,
		StatusRejected,
		StatusCancelled,
	},
	StatusAccepted:   {},
	StatusRejected:   {},
	StatusInProgress: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ValidateTransition checks if a status transition is allowed
func ValidateTransition(current, next OrderStatus) error {
	allowed, exists := validTransitions[current]
	if !exists {
		return appErrors.Validation(fmt.Sprintf("unknown order status: %s", current), nil)
	}

	for _, status := range allowed {
		if next == status {
			return nil
		}
	}

	return appErrors.InvalidState("order", string(current), string(next))
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current OrderStatus) []OrderStatus {
	return validTransitions[current]
}
