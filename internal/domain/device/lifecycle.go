package device

import (
	appErrors "cargo-tracker/pkg/errors"
	"fmt"
)

// State machine for device status transitions. Retired is terminal;
// maintenance cannot jump straight into transit.
var validTransitions = map[DeviceStatus][]DeviceStatus{
	StatusAvailable: {
		StatusInTransit,
		StatusMaintenance,
		StatusRetired,
	},
	StatusInTransit: {
		StatusAvailable,
		StatusMaintenance,
		StatusRetired,
	},
	StatusMaintenance: {
		StatusAvailable,
		StatusRetired,
	},
	StatusRetired: {
		// Terminal state - no transitions
	},
}

// ValidateTransition checks if a status transition is allowed
func ValidateTransition(current, next DeviceStatus) error {
	allowed, exists := validTransitions[current]
	if !exists {
		return appErrors.Validation(fmt.Sprintf("unknown device status: %s", current), nil)
	}

	for _, status := range allowed {
		if next == status {
			return nil
		}
	}

	return appErrors.InvalidState("device", string(current), string(next))
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current DeviceStatus) []DeviceStatus {
	return validTransitions[current]
}

// ValidateBatteryLevel checks the 0-100 bound on battery readings.
func ValidateBatteryLevel(level int) error {
	if level < 0 || level > 100 {
		return appErrors.Validation(fmt.Sprintf("battery level %d outside range 0-100", level), nil)
	}
	return nil
}
