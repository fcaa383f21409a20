package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	orderDomain "wello-backend/internal/domain/order"
)

type OrderRepository struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) *OrderRepository { return &OrderRepository{db: db} }

func (r *OrderRepository) Create(ctx context.Context, o *orderDomain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) Save(ctx context.Context, o *orderDomain.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*orderDomain.Order, error) {
	var out orderDomain.Order
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&out)
	return &out, res.Error
}

func (r *OrderRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*orderDomain.Order, error) {
	var out orderDomain.Order
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&out)
	return &out, res.Error
}

func (r *OrderRepository) ListOpenByKind(ctx context.Context, kind orderDomain.Kind, currency string, now time.Time) ([]*orderDomain.Order, error) {
	var out []*orderDomain.Order
	res := r.db.WithContext(ctx).
		Where("kind = ? AND currency = ? AND status = ? AND expires_at > ?",
			kind, currency, orderDomain.StatusPending, now).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]*orderDomain.Order, error) {
	var out []*orderDomain.Order
	res := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *OrderRepository) ListOpen(ctx context.Context, now time.Time) ([]*orderDomain.Order, error) {
	var out []*orderDomain.Order
	res := r.db.WithContext(ctx).
		Where("status = ? AND expires_at > ?", orderDomain.StatusPending, now).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
