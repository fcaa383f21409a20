package order

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	// GetByOrderIDForUpdate locks the row; only meaningful inside a transaction.
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*Order, error)
	// ListOpenByKind returns pending, unexpired orders of the given kind and
	// currency, oldest first. This is a cheap storage-side prefilter; full
	// eligibility is decided by the matching pipeline.
	ListOpenByKind(ctx context.Context, kind Kind, currency string, now time.Time) ([]*Order, error)
	// ListOpen returns all pending, unexpired orders, newest first (market view).
	ListOpen(ctx context.Context, now time.Time) ([]*Order, error)
	// ListByOwner returns all of one participant's orders regardless of
	// status, newest first (dashboard view).
	ListByOwner(ctx context.Context, ownerID string) ([]*Order, error)
	Save(ctx context.Context, o *Order) error
}
