package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "cargo-tracker/pkg/errors"
)

func TestValidateTransition_Exhaustive(t *testing.T) {
	statuses := []DeviceStatus{
		StatusAvailable, StatusInTransit, StatusMaintenance, StatusRetired,
	}

	// Retired is terminal; maintenance cannot jump straight into transit.
	allowed := map[DeviceStatus]map[DeviceStatus]bool{
		StatusAvailable: {
			StatusInTransit:   true,
			StatusMaintenance: true,
			StatusRetired:     true,
		},
		StatusInTransit: {
			StatusAvailable:   true,
			StatusMaintenance: true,
			StatusRetired:     true,
		},
		StatusMaintenance: {
			StatusAvailable: true,
			StatusRetired:   true,
		},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := ValidateTransition(from, to)
			if allowed[from][to] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState),
					"%s -> %s must be refused, got %v", from, to, err)
			}
		}
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	err := ValidateTransition(DeviceStatus("scrapped"), StatusAvailable)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

func TestValidateBatteryLevel(t *testing.T) {
	for _, level := range []int{0, 1, 50, 100} {
		assert.NoError(t, ValidateBatteryLevel(level))
	}
	for _, level := range []int{-1, 101, 255} {
		err := ValidateBatteryLevel(level)
		assert.True(t, appErrors.IsKind(err, appErrors.KindValidation), "level %d", level)
	}
}
