package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidState  = errors.New("order is not in the required state")
	ErrLimitExceeded = errors.New("amount exceeds borrower credit limit")
	ErrValidation    = errors.New("invalid order")
)

type Kind string

const (
	KindLend   Kind = "lend"
	KindBorrow Kind = "borrow"
)

// Opposite returns the counter side of a kind.
func (k Kind) Opposite() Kind {
	if k == KindLend {
		return KindBorrow
	}
	return KindLend
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusMatched   Status = "matched"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type RepaymentMethod string

const (
	MethodBullet           RepaymentMethod = "bullet"
	MethodEqualInstallment RepaymentMethod = "equal_installment"
	MethodInterestFirst    RepaymentMethod = "interest_first"
	MethodEqualPrincipal   RepaymentMethod = "equal_principal"
)

// Currencies supported by the marketplace. No implicit conversion anywhere.
var Currencies = map[string]bool{
	"NGN":  true,
	"USDT": true,
	"USDC": true,
	"U":    true,
}

const (
	MinTermDays = 1
	MaxTermDays = 365
)

// StringList is a []string stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("stringlist: unsupported scan type %T", src)
}

// Contains is a linear scan; preference lists are tiny.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID      uint64 `gorm:"primaryKey;column:id" json:"-"`
	OrderID string `gorm:"size:32;uniqueIndex:ux_orders_order_id" json:"order_id"`
	Kind    Kind   `gorm:"size:8" json:"kind"`
	OwnerID string `gorm:"size:32;index:idx_orders_owner" json:"owner_id"`

	Amount    float64 `gorm:"type:decimal(18,2)" json:"amount"`
	Currency  string  `gorm:"size:8;index:idx_orders_currency_status" json:"currency"`
	RateBound float64 `gorm:"type:decimal(6,2)" json:"rate_bound"` // lend: offered APR %, borrow: max acceptable APR %
	TermDays  int     `json:"term_days"`

	RepaymentMethod RepaymentMethod `gorm:"size:24" json:"repayment_method"`

	CollateralRequired bool    `json:"collateral_required"`
	CollateralRatioPct float64 `gorm:"type:decimal(6,2)" json:"collateral_ratio_pct,omitempty"`

	// Counterparty constraints (lend orders only)
	MinCreditScore       *int       `json:"min_credit_score,omitempty"`
	MinPriorTransactions *int       `json:"min_prior_transactions,omitempty"`
	IndustryPreference   StringList `gorm:"type:json" json:"industry_preference,omitempty"`

	Status          Status         `gorm:"size:16;default:'pending';index:idx_orders_currency_status" json:"status"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	ExpiresAt       time.Time      `json:"expires_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string { return "orders" }

// HasConstraints reports whether any counterparty constraint is set.
func (o *Order) HasConstraints() bool {
	return o.MinCreditScore != nil || o.MinPriorTransactions != nil || len(o.IndustryPreference) > 0
}

// Open reports whether the order can still enter a matching pipeline at t.
func (o *Order) Open(t time.Time) bool {
	return o.Status == StatusPending && o.ExpiresAt.After(t)
}

// Validate checks structural correctness of the order. It does not touch
// storage; owner existence and credit limits are usecase concerns. Every
// failure wraps ErrValidation so callers can classify it.
func (o *Order) Validate() error {
	if err := o.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (o *Order) validate() error {
	if o.Kind != KindLend && o.Kind != KindBorrow {
		return fmt.Errorf("invalid kind %q", o.Kind)
	}
	if o.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	if o.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if !Currencies[o.Currency] {
		return fmt.Errorf("unsupported currency %q", o.Currency)
	}
	if o.RateBound <= 0 || o.RateBound > 100 {
		return errors.New("rate_bound must be in (0, 100]")
	}
	if o.TermDays < MinTermDays || o.TermDays > MaxTermDays {
		return fmt.Errorf("term_days must be in [%d, %d]", MinTermDays, MaxTermDays)
	}
	switch o.RepaymentMethod {
	case MethodBullet, MethodEqualInstallment, MethodInterestFirst, MethodEqualPrincipal:
	default:
		return fmt.Errorf("invalid repayment_method %q", o.RepaymentMethod)
	}
	if o.CollateralRequired && o.CollateralRatioPct <= 0 {
		return errors.New("collateral_ratio_pct must be > 0 when collateral is required")
	}
	if !o.CollateralRequired && o.CollateralRatioPct != 0 {
		return errors.New("collateral_ratio_pct set without collateral_required")
	}
	if o.Kind == KindBorrow && o.HasConstraints() {
		return errors.New("counterparty constraints are only valid on lend orders")
	}
	if o.MinCreditScore != nil && (*o.MinCreditScore < 0 || *o.MinCreditScore > 100) {
		return errors.New("min_credit_score must be in [0, 100]")
	}
	if o.MinPriorTransactions != nil && *o.MinPriorTransactions < 0 {
		return errors.New("min_prior_transactions must be >= 0")
	}
	if !o.ExpiresAt.After(o.CreatedAt) {
		return errors.New("expires_at must be after created_at")
	}
	return nil
}
