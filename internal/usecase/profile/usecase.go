package profile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "wello-backend/internal/domain/profile"
)

type Usecase struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewUsecase(repo domain.Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: repo, log: log}
}

type UpsertInput struct {
	ProfileID          string
	DisplayName        string
	Industry           string
	Breakdown          []domain.BreakdownItem
	OnTimeRatePct      float64
	TotalTransactions  int
	CollateralType     string
	CollateralRatioPct float64
}

type ProfileDTO struct {
	ProfileID          string                 `json:"profile_id"`
	DisplayName        string                 `json:"display_name"`
	Industry           string                 `json:"industry"`
	Breakdown          []domain.BreakdownItem `json:"credit_score_breakdown"`
	OnTimeRatePct      float64                `json:"on_time_repayment_rate_pct"`
	TotalTransactions  int                    `json:"total_transactions"`
	CollateralType     string                 `json:"collateral_type,omitempty"`
	CollateralRatioPct float64                `json:"collateral_ratio_pct,omitempty"`
	CreditScore        float64                `json:"credit_score"`
	CreditLevel        domain.Level           `json:"credit_level"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

func toDTO(p *domain.Profile) *ProfileDTO {
	return &ProfileDTO{
		ProfileID:          p.ProfileID,
		DisplayName:        p.DisplayName,
		Industry:           p.Industry,
		Breakdown:          p.Breakdown,
		OnTimeRatePct:      p.OnTimeRatePct,
		TotalTransactions:  p.TotalTransactions,
		CollateralType:     p.CollateralType,
		CollateralRatioPct: p.CollateralRatioPct,
		CreditScore:        p.CreditScore(),
		CreditLevel:        p.LevelFor(),
		UpdatedAt:          p.UpdatedAt,
	}
}

// Upsert stores the latest credit snapshot for a participant. Weight-sum and
// range violations are rejected before anything touches storage.
func (u *Usecase) Upsert(ctx context.Context, in UpsertInput) (*ProfileDTO, error) {
	p := &domain.Profile{
		ProfileID:          in.ProfileID,
		DisplayName:        in.DisplayName,
		Industry:           in.Industry,
		Breakdown:          in.Breakdown,
		OnTimeRatePct:      in.OnTimeRatePct,
		TotalTransactions:  in.TotalTransactions,
		CollateralType:     in.CollateralType,
		CollateralRatioPct: in.CollateralRatioPct,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	u.log.Info("profile upserted",
		zap.String("profile_id", p.ProfileID),
		zap.Float64("credit_score", p.CreditScore()))
	return toDTO(p), nil
}

func (u *Usecase) Get(ctx context.Context, profileID string) (*ProfileDTO, error) {
	p, err := u.repo.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDTO(p), nil
}
