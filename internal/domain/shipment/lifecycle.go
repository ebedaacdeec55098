package shipment

import (
	appErrors "cargo-tracker/pkg/errors"
	"fmt"
)

// State machine for shipment status transitions
var validTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusPending: {
		StatusAssigned,
		StatusCancelled,
	},
	StatusAssigned: {
		StatusInTransit,
		StatusCancelled,
	},
	StatusInTransit: {
		StatusCompleted,
		StatusCancelled,
		StatusFailed,
	},
	StatusCompleted: {
		// Terminal state - no transitions
	},
	StatusCancelled: {
		// Terminal state - no transitions
	},
	StatusFailed: {
		// Terminal state - no transitions
	},
}

// ValidateTransition checks if a status transition is allowed
func ValidateTransition(current, next ShipmentStatus) error {
	allowed, exists := validTransitions[current]
	if !exists {
		return appErrors.Validation(fmt.Sprintf("unknown shipment status: %s", current), nil)
	}

	for _, status := range allowed {
		if next == status {
			return nil
		}
	}

	return appErrors.InvalidState("shipment", string(current), string(next))
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current ShipmentStatus) []ShipmentStatus {
	return validTransitions[current]
}

// ValidateRequirements checks the structural invariants a shipment must
// satisfy to enter the target status.
func ValidateRequirements(s *Shipment, target ShipmentStatus) error {
	switch target {
	case StatusAssigned:
		if s.ShipperID == nil {
			return appErrors.Validation("shipper is required for an assigned shipment", nil)
		}
	case StatusInTransit:
		if s.ShipperID == nil {
			return appErrors.Validation("shipper is required to start transit", nil)
		}
		if s.DeviceID == nil {
			return appErrors.Validation("tracking device is required to start transit", nil)
		}
	case StatusCompleted:
		if s.ActualDeliveryAt == nil {
			return appErrors.Validation("delivery time is required to complete a shipment", nil)
		}
	}
	return nil
}
