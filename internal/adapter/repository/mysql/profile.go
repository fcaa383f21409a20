package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	profileDomain "wello-backend/internal/domain/profile"
)

type ProfileRepository struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) *ProfileRepository { return &ProfileRepository{db: db} }

func (r *ProfileRepository) Upsert(ctx context.Context, p *profileDomain.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "industry", "breakdown",
				"on_time_rate_pct", "total_transactions",
				"collateral_type", "collateral_ratio_pct", "updated_at",
			}),
		}).
		Create(p).Error
}

func (r *ProfileRepository) GetByProfileID(ctx context.Context, profileID string) (*profileDomain.Profile, error) {
	var out profileDomain.Profile
	res := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&out)
	return &out, res.Error
}

func (r *ProfileRepository) GetByProfileIDs(ctx context.Context, profileIDs []string) (map[string]*profileDomain.Profile, error) {
	if len(profileIDs) == 0 {
		return map[string]*profileDomain.Profile{}, nil
	}
	var rows []*profileDomain.Profile
	res := r.db.WithContext(ctx).Where("profile_id IN ?", profileIDs).Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make(map[string]*profileDomain.Profile, len(rows))
	for _, p := range rows {
		out[p.ProfileID] = p
	}
	return out, nil
}
