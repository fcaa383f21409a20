package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/uow"
	"wello-backend/internal/infrastructure/metrics"
	"wello-backend/pkg/id"
)

// DefaultValidityDays is how long an order stays matchable when the caller
// does not set expires_at.
const DefaultValidityDays = 7

type Usecase struct {
	repo     domain.Repository
	profiles profile.Repository
	uow      uow.UnitOfWork
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(repo domain.Repository, profiles profile.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{
		repo:     repo,
		profiles: profiles,
		uow:      tx,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source (tests).
func (u *Usecase) WithClock(fn func() time.Time) *Usecase {
	u.now = fn
	return u
}

type SubmitInput struct {
	Kind                 string
	OwnerID              string
	Amount               float64
	Currency             string
	RateBound            float64
	TermDays             int
	RepaymentMethod      string
	CollateralRequired   bool
	CollateralRatioPct   float64
	MinCreditScore       *int
	MinPriorTransactions *int
	IndustryPreference   []string
	ExpiresAt            time.Time // zero means CreatedAt + DefaultValidityDays
}

type OrderDTO struct {
	OrderID              string     `json:"order_id"`
	Kind                 string     `json:"kind"`
	OwnerID              string     `json:"owner_id"`
	Amount               float64    `json:"amount"`
	Currency             string     `json:"currency"`
	RateBound            float64    `json:"rate_bound"`
	TermDays             int        `json:"term_days"`
	RepaymentMethod      string     `json:"repayment_method"`
	CollateralRequired   bool       `json:"collateral_required"`
	CollateralRatioPct   float64    `json:"collateral_ratio_pct,omitempty"`
	MinCreditScore       *int       `json:"min_credit_score,omitempty"`
	MinPriorTransactions *int       `json:"min_prior_transactions,omitempty"`
	IndustryPreference   []string   `json:"industry_preference,omitempty"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	ExpiresAt            time.Time  `json:"expires_at"`
}

func toDTO(o *domain.Order) *OrderDTO {
	return &OrderDTO{
		OrderID:              o.OrderID,
		Kind:                 string(o.Kind),
		OwnerID:              o.OwnerID,
		Amount:               o.Amount,
		Currency:             o.Currency,
		RateBound:            o.RateBound,
		TermDays:             o.TermDays,
		RepaymentMethod:      string(o.RepaymentMethod),
		CollateralRequired:   o.CollateralRequired,
		CollateralRatioPct:   o.CollateralRatioPct,
		MinCreditScore:       o.MinCreditScore,
		MinPriorTransactions: o.MinPriorTransactions,
		IndustryPreference:   o.IndustryPreference,
		Status:               string(o.Status),
		CreatedAt:            o.CreatedAt,
		ExpiresAt:            o.ExpiresAt,
	}
}

// Submit validates and stores a new order. Borrow orders require a registered
// owner profile and are capped by the owner's progressive credit limit.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*OrderDTO, error) {
	now := u.now()
	o := &domain.Order{
		OrderID:              id.NewID32(),
		Kind:                 domain.Kind(in.Kind),
		OwnerID:              in.OwnerID,
		Amount:               in.Amount,
		Currency:             in.Currency,
		RateBound:            in.RateBound,
		TermDays:             in.TermDays,
		RepaymentMethod:      domain.RepaymentMethod(in.RepaymentMethod),
		CollateralRequired:   in.CollateralRequired,
		CollateralRatioPct:   in.CollateralRatioPct,
		MinCreditScore:       in.MinCreditScore,
		MinPriorTransactions: in.MinPriorTransactions,
		IndustryPreference:   in.IndustryPreference,
		Status:               domain.StatusPending,
		StatusUpdatedAt:      now,
		CreatedAt:            now,
		ExpiresAt:            in.ExpiresAt,
	}
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = now.AddDate(0, 0, DefaultValidityDays)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if o.Kind == domain.KindBorrow {
		p, err := u.profiles.GetByProfileID(ctx, o.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("borrower %s has no profile on file: %w", o.OwnerID, profile.ErrNotFound)
			}
			return nil, err
		}
		if level := p.LevelFor(); o.Amount > level.Limit {
			return nil, fmt.Errorf("amount %.2f above level %d limit %.0f: %w",
				o.Amount, level.Level, level.Limit, domain.ErrLimitExceeded)
		}
	}

	if err := u.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	metrics.OrdersSubmitted.Inc()
	u.log.Info("order submitted",
		zap.String("order_id", o.OrderID),
		zap.String("kind", string(o.Kind)),
		zap.String("currency", o.Currency),
		zap.Float64("amount", o.Amount))
	return toDTO(o), nil
}

func (u *Usecase) Get(ctx context.Context, orderID string) (*OrderDTO, error) {
	o, err := u.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDTO(o), nil
}

// ListMarket returns the open order book, newest first.
func (u *Usecase) ListMarket(ctx context.Context) ([]*OrderDTO, error) {
	orders, err := u.repo.ListOpen(ctx, u.now())
	if err != nil {
		return nil, err
	}
	out := make([]*OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toDTO(o)
	}
	return out, nil
}

// ListByOwner returns every order the participant has submitted, any status,
// newest first.
func (u *Usecase) ListByOwner(ctx context.Context, ownerID string) ([]*OrderDTO, error) {
	orders, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toDTO(o)
	}
	return out, nil
}

// Cancel withdraws a pending order. Any presented session for it is
// reconciled lazily by the session manager on next access.
func (u *Usecase) Cancel(ctx context.Context, orderID string) (*OrderDTO, error) {
	var dto *OrderDTO
	err := u.uow.WithinOrderTx(ctx, orderID, func(r uow.Repos, o *domain.Order) error {
		if o.Status != domain.StatusPending {
			return domain.ErrInvalidState
		}
		o.Status = domain.StatusCancelled
		o.StatusUpdatedAt = u.now()
		if err := r.Orders.Save(ctx, o); err != nil {
			return err
		}
		dto = toDTO(o)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.log.Info("order cancelled", zap.String("order_id", orderID))
	return dto, nil
}

// Schedule previews the repayment schedule implied by the order's terms.
// Matched orders anchor on the match time; open orders preview from now.
func (u *Usecase) Schedule(ctx context.Context, orderID string) ([]domain.Installment, error) {
	o, err := u.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	start := u.now()
	switch o.Status {
	case domain.StatusMatched, domain.StatusActive, domain.StatusCompleted, domain.StatusOverdue:
		start = o.StatusUpdatedAt
	}
	return o.Schedule(start), nil
}
