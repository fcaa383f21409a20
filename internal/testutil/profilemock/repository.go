package profilemock

import (
	"context"
	"errors"

	"wello-backend/internal/domain/profile"
)

// Ensure compile-time compliance
var _ profile.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("profilemock: method not implemented")

type Repo struct {
	UpsertFn          func(ctx context.Context, p *profile.Profile) error
	GetByProfileIDFn  func(ctx context.Context, profileID string) (*profile.Profile, error)
	GetByProfileIDsFn func(ctx context.Context, profileIDs []string) (map[string]*profile.Profile, error)
}

func (m *Repo) Upsert(ctx context.Context, p *profile.Profile) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, p)
	}
	return errUnimplemented
}

func (m *Repo) GetByProfileID(ctx context.Context, profileID string) (*profile.Profile, error) {
	if m.GetByProfileIDFn != nil {
		return m.GetByProfileIDFn(ctx, profileID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByProfileIDs(ctx context.Context, profileIDs []string) (map[string]*profile.Profile, error) {
	if m.GetByProfileIDsFn != nil {
		return m.GetByProfileIDsFn(ctx, profileIDs)
	}
	return nil, errUnimplemented
}
