package device

import "errors"

var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrDeviceAlreadyExists = errors.New("device already exists")
	ErrDeviceInUse         = errors.New("device is in use")
	ErrDeviceUnavailable   = errors.New("device is not available for assignment")
	ErrShipmentRequired    = errors.New("a shipment is required for in_transit status")
)
