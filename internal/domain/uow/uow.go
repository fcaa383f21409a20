package uow

import (
	"context"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/session"
)

type Repos struct {
	Orders   order.Repository
	Profiles profile.Repository
	Sessions session.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the originating order row first, then pass it in
	WithinOrderTx(ctx context.Context, orderID string, fn func(r Repos, o *order.Order) error) error
}
