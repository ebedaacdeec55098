package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order is no longer pending")
	ErrReasonRequired  = errors.New("rejection reason is required")
	ErrInvalidRange    = errors.New("invalid tracking threshold range")
)
