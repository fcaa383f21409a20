package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	sessionDomain "wello-backend/internal/domain/session"
)

type SessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) *SessionRepository { return &SessionRepository{db: db} }

func (r *SessionRepository) Create(ctx context.Context, s *sessionDomain.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) Save(ctx context.Context, s *sessionDomain.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*sessionDomain.Session, error) {
	var out sessionDomain.Session
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&out)
	return &out, res.Error
}

func (r *SessionRepository) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*sessionDomain.Session, error) {
	var out sessionDomain.Session
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", sessionID).
		First(&out)
	return &out, res.Error
}

func (r *SessionRepository) GetActiveByOrderID(ctx context.Context, orderID string) (*sessionDomain.Session, error) {
	var out sessionDomain.Session
	res := r.db.WithContext(ctx).
		Where("order_id = ? AND state IN ?", orderID,
			[]sessionDomain.State{sessionDomain.StateScoring, sessionDomain.StatePresented}).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *SessionRepository) ListPresented(ctx context.Context) ([]*sessionDomain.Session, error) {
	var out []*sessionDomain.Session
	res := r.db.WithContext(ctx).
		Where("state = ?", sessionDomain.StatePresented).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
