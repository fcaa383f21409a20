package profile

import "context"

type Repository interface {
	// Upsert creates the profile or replaces the snapshot for an existing
	// profile_id.
	Upsert(ctx context.Context, p *Profile) error
	GetByProfileID(ctx context.Context, profileID string) (*Profile, error)
	// GetByProfileIDs loads a batch of profiles keyed by profile_id. Missing
	// ids are simply absent from the map, not an error.
	GetByProfileIDs(ctx context.Context, profileIDs []string) (map[string]*Profile, error)
}
