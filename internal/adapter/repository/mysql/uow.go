package mysql

import (
	"context"

	"gorm.io/gorm"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func txRepos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Orders:   &OrderRepository{db: tx},
		Profiles: &ProfileRepository{db: tx},
		Sessions: &SessionRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos(tx))
	})
}

func (u *GormUoW) WithinOrderTx(ctx context.Context, orderID string, fn func(r uow.Repos, o *order.Order) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := txRepos(tx)
		// lock the order row up-front to prevent races
		o, err := r.Orders.GetByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return fn(r, o)
	})
}
