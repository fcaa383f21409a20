package profile

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("profile not found")
	ErrBadWeights = errors.New("credit breakdown weights must sum to 100")
	ErrValidation = errors.New("invalid profile")
)

// BreakdownItem is one category of the credit score (e.g. repayment history,
// transaction frequency), scored 0-100 with a percentage weight.
type BreakdownItem struct {
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	WeightPct float64 `json:"weight_pct"`
}

// Breakdown is an ordered list of BreakdownItem stored as a JSON column.
type Breakdown []BreakdownItem

func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

func (b *Breakdown) Scan(src any) error {
	if src == nil {
		*b = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return fmt.Errorf("breakdown: unsupported scan type %T", src)
}

// Composite returns the weighted credit score, 0-100.
func (b Breakdown) Composite() float64 {
	var s float64
	for _, it := range b {
		s += it.Score * it.WeightPct / 100
	}
	return s
}

// Profile is the credit/behavioral snapshot of a marketplace participant,
// used as scoring input by the matching pipeline.
type Profile struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	ProfileID string `gorm:"size:32;uniqueIndex:ux_profiles_profile_id" json:"profile_id"`

	DisplayName string `gorm:"size:128" json:"display_name"`
	Industry    string `gorm:"size:64" json:"industry"`

	Breakdown         Breakdown `gorm:"type:json" json:"credit_score_breakdown"`
	OnTimeRatePct     float64   `gorm:"type:decimal(5,2)" json:"on_time_repayment_rate_pct"`
	TotalTransactions int       `json:"total_transactions"`

	// Collateral the party is able to pledge; empty type means none.
	CollateralType     string  `gorm:"size:32" json:"collateral_type,omitempty"`
	CollateralRatioPct float64 `gorm:"type:decimal(6,2)" json:"collateral_ratio_pct,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "profiles" }

// OffersCollateral reports whether the profile pledges any collateral.
func (p *Profile) OffersCollateral() bool { return p.CollateralType != "" }

// CreditScore is the weighted composite of the breakdown, 0-100.
func (p *Profile) CreditScore() float64 { return p.Breakdown.Composite() }

// Validate checks the snapshot's structural correctness. Every failure wraps
// ErrValidation; weight-sum violations additionally match ErrBadWeights.
func (p *Profile) Validate() error {
	if err := p.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (p *Profile) validate() error {
	if p.ProfileID == "" {
		return errors.New("profile_id is required")
	}
	if len(p.Breakdown) == 0 {
		return errors.New("credit_score_breakdown is required")
	}
	var weights float64
	for _, it := range p.Breakdown {
		if it.Category == "" {
			return errors.New("breakdown category is required")
		}
		if it.Score < 0 || it.Score > 100 {
			return fmt.Errorf("breakdown score %v out of [0, 100]", it.Score)
		}
		if it.WeightPct <= 0 {
			return errors.New("breakdown weight must be > 0")
		}
		weights += it.WeightPct
	}
	if math.Abs(weights-100) > 1e-9 {
		return ErrBadWeights
	}
	if p.OnTimeRatePct < 0 || p.OnTimeRatePct > 100 {
		return errors.New("on_time_repayment_rate_pct out of [0, 100]")
	}
	if p.TotalTransactions < 0 {
		return errors.New("total_transactions must be >= 0")
	}
	if p.OffersCollateral() && p.CollateralRatioPct <= 0 {
		return errors.New("collateral_ratio_pct must be > 0 when collateral is offered")
	}
	return nil
}
