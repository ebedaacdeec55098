// Package access is the role-and-ownership gate consulted before every
// order, shipment and device operation. All predicates are pure: they look
// only at the actor and the entity (plus any pre-fetched linked shipments),
// never at storage.
package access

import (
	"github.com/google/uuid"

	"cargo-tracker/internal/domain/device"
	"cargo-tracker/internal/domain/order"
	"cargo-tracker/internal/domain/shipment"
	"cargo-tracker/internal/domain/user"
	appErrors "cargo-tracker/pkg/errors"
)

// Actor is the authenticated caller as seen by the gate.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

// CanReadOrder: customers and providers see their own orders. Shippers have
// no order access at all; admins manage users, not cargo data.
func CanReadOrder(actor Actor, o *order.Order) bool {
	switch actor.Role {
	case user.RoleCustomer:
		return o.CustomerID == actor.ID
	case user.RoleProvider:
		return o.ProviderID == actor.ID
	}
	return false
}

func CanWriteOrder(actor Actor, o *order.Order) bool {
	return CanReadOrder(actor, o)
}

func CanReadShipment(actor Actor, s *shipment.Shipment) bool {
	switch actor.Role {
	case user.RoleCustomer:
		return s.CustomerID == actor.ID
	case user.RoleProvider:
		return s.ProviderID == actor.ID
	case user.RoleShipper:
		return s.ShipperID != nil && *s.ShipperID == actor.ID
	}
	return false
}

// CanWriteShipment: only the owning customer or provider may mutate shipment
// fields. Shippers drive transitions through dedicated operations, not
// field updates; admins are denied.
func CanWriteShipment(actor Actor, s *shipment.Shipment) bool {
	switch actor.Role {
	case user.RoleCustomer:
		return s.CustomerID == actor.ID
	case user.RoleProvider:
		return s.ProviderID == actor.ID
	}
	return false
}

func CanCancelShipment(actor Actor, s *shipment.Shipment) bool {
	return CanWriteShipment(actor, s)
}

// IsAssignedShipper reports whether the actor is the shipper executing s.
func IsAssignedShipper(actor Actor, s *shipment.Shipment) bool {
	return actor.Role == user.RoleShipper && s.ShipperID != nil && *s.ShipperID == actor.ID
}

// CanReadDevice: providers see devices they own; customers and shippers see
// a device only through a shipment that links them to it.
func CanReadDevice(actor Actor, d *device.Device, linked []*shipment.Shipment) bool {
	switch actor.Role {
	case user.RoleProvider:
		return d.ProviderID == actor.ID
	case user.RoleCustomer:
		for _, s := range linked {
			if s.CustomerID == actor.ID {
				return true
			}
		}
	case user.RoleShipper:
		for _, s := range linked {
			if s.ShipperID != nil && *s.ShipperID == actor.ID {
				return true
			}
		}
	}
	return false
}

func CanWriteDevice(actor Actor, d *device.Device) bool {
	return actor.Role == user.RoleProvider && d.ProviderID == actor.ID
}

// CanAccessDeviceTelemetry mirrors CanReadDevice; telemetry is a read.
func CanAccessDeviceTelemetry(actor Actor, d *device.Device, linked []*shipment.Shipment) bool {
	return CanReadDevice(actor, d, linked)
}

// CanManageUsers: user administration is the admin's only surface.
func CanManageUsers(actor Actor) bool {
	return actor.Role == user.RoleAdmin
}

// CanViewShipmentStatistics: providers see aggregates over their own fleet,
// admins the global ones. Aggregates carry counts only, no cargo detail.
func CanViewShipmentStatistics(actor Actor) bool {
	return actor.Role == user.RoleProvider || actor.Role == user.RoleAdmin
}

// Denied builds the uniform denial error for an entity. The message never
// confirms whether the entity exists.
func Denied(entity string) error {
	return appErrors.AccessDenied(entity)
}
