package shipment

import "errors"

var (
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrShipperRequired   = errors.New("shipper must be assigned first")
	ErrDeviceRequired    = errors.New("device is required")
	ErrDeviceConflict    = errors.New("device was claimed by another shipment")
	ErrShipmentImmutable = errors.New("only pending shipments can be updated")
)
