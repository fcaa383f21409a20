package uowmock

import (
	"context"
	"errors"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork. Fill in the
// function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn      func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinOrderTxFn func(ctx context.Context, orderID string, fn func(r uow.Repos, o *order.Order) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough returns a UoW that simply invokes the callback with the given
// repos, with no transactional behavior. Handy with in-memory mocks.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		},
		WithinOrderTxFn: func(ctx context.Context, orderID string, fn func(uow.Repos, *order.Order) error) error {
			o, err := r.Orders.GetByOrderIDForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			return fn(r, o)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinOrderTx(ctx context.Context, orderID string, fn func(r uow.Repos, o *order.Order) error) error {
	if m.WithinOrderTxFn != nil {
		return m.WithinOrderTxFn(ctx, orderID, fn)
	}
	return errUnimplemented
}
