package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cargo-tracker/internal/domain/shipment"
)

// Repository defines the interface for order repository operations.
// Accept and Reject are conditional writes guarded on status = pending so
// a concurrent accept/reject race has exactly one winner.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	List(ctx context.Context, filter *Filter) ([]*Order, int64, error)

	// Accept inserts the shipment and moves the order pending -> accepted
	// with shipment_id and processed_at in a single transaction. If the
	// shipment insert fails the order transition is rolled back.
	Accept(ctx context.Context, orderID uuid.UUID, s *shipment.Shipment, processedAt time.Time) error

	// Reject moves pending -> rejected with the reason and processed_at.
	Reject(ctx context.Context, orderID uuid.UUID, reason string, processedAt time.Time) error
}

// Filter represents filtering options for listing orders
type Filter struct {
	Status     *OrderStatus
	CustomerID *uuid.UUID
	ProviderID *uuid.UUID

	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	// Case-insensitive substring match over description and addresses
	Search string

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
