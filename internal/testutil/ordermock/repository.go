package ordermock

import (
	"context"
	"errors"
	"time"

	"wello-backend/internal/domain/order"
)

// Ensure compile-time compliance
var _ order.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("ordermock: method not implemented")

// Repo is a function-backed mock satisfying order.Repository. Fill in the
// fields a test needs; unfilled ones return errUnimplemented.
type Repo struct {
	CreateFn                func(ctx context.Context, o *order.Order) error
	GetByOrderIDFn          func(ctx context.Context, orderID string) (*order.Order, error)
	GetByOrderIDForUpdateFn func(ctx context.Context, orderID string) (*order.Order, error)
	ListOpenByKindFn        func(ctx context.Context, kind order.Kind, currency string, now time.Time) ([]*order.Order, error)
	ListOpenFn              func(ctx context.Context, now time.Time) ([]*order.Order, error)
	ListByOwnerFn           func(ctx context.Context, ownerID string) ([]*order.Order, error)
	SaveFn                  func(ctx context.Context, o *order.Order) error
}

func (m *Repo) Create(ctx context.Context, o *order.Order) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, o)
	}
	return errUnimplemented
}

func (m *Repo) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	if m.GetByOrderIDFn != nil {
		return m.GetByOrderIDFn(ctx, orderID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*order.Order, error) {
	if m.GetByOrderIDForUpdateFn != nil {
		return m.GetByOrderIDForUpdateFn(ctx, orderID)
	}
	// many tests don't care about locking; fall back to the plain getter
	if m.GetByOrderIDFn != nil {
		return m.GetByOrderIDFn(ctx, orderID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListOpenByKind(ctx context.Context, kind order.Kind, currency string, now time.Time) ([]*order.Order, error) {
	if m.ListOpenByKindFn != nil {
		return m.ListOpenByKindFn(ctx, kind, currency, now)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListOpen(ctx context.Context, now time.Time) ([]*order.Order, error) {
	if m.ListOpenFn != nil {
		return m.ListOpenFn(ctx, now)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string) ([]*order.Order, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, o *order.Order) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, o)
	}
	return errUnimplemented
}
