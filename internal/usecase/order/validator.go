package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainUser "cargo-tracker/internal/domain/user"
	appErrors "cargo-tracker/pkg/errors"
)

// ValidateParties checks that the customer and provider exist, hold the
// expected roles and are active accounts.
func ValidateParties(ctx context.Context, userRepo domainUser.Repository, customerID, providerID uuid.UUID) error {
	customer, err := userRepo.GetByID(ctx, customerID)
	if err != nil {
		return appErrors.NotFound("user", "customer not found")
	}
	if customer.Role != domainUser.RoleCustomer {
		return appErrors.InvalidRole("ordering party must have the customer role")
	}
	if !customer.IsActive {
		return appErrors.InactiveAccount("customer account is inactive")
	}

	provider, err := userRepo.GetByID(ctx, providerID)
	if err != nil {
		return appErrors.NotFound("user", "provider not found")
	}
	if provider.Role != domainUser.RoleProvider {
		return appErrors.InvalidRole("receiving party must have the provider role")
	}
	if !provider.IsActive {
		return appErrors.InactiveAccount("provider account is inactive")
	}

	if customerID == providerID {
		return appErrors.Validation("customer and provider must be different users", nil)
	}

	return nil
}

// ValidateTrackingThresholds checks the temperature and humidity ranges
// carried by a create request. A range is required to be coherent only when
// the matching tracking flag is on.
func ValidateTrackingThresholds(req *CreateOrderRequest) error {
	if req.RequiresTemperatureTracking {
		if req.TempMin != nil && req.TempMax != nil && *req.TempMin > *req.TempMax {
			return appErrors.Validation(
				fmt.Sprintf("temperature minimum %.1f exceeds maximum %.1f", *req.TempMin, *req.TempMax), nil)
		}
	}

	if req.RequiresHumidityTracking {
		if req.HumidityMin != nil && req.HumidityMax != nil && *req.HumidityMin > *req.HumidityMax {
			return appErrors.Validation(
				fmt.Sprintf("humidity minimum %.1f exceeds maximum %.1f", *req.HumidityMin, *req.HumidityMax), nil)
		}
		for _, v := range []*float64{req.HumidityMin, req.HumidityMax} {
			if v != nil && (*v < 0 || *v > 100) {
				return appErrors.Validation(fmt.Sprintf("humidity bound %.1f outside range 0-100", *v), nil)
			}
		}
	}

	return nil
}
