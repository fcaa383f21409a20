package sessionmock

import (
	"context"
	"errors"

	"wello-backend/internal/domain/session"
)

// Ensure compile-time compliance
var _ session.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("sessionmock: method not implemented")

type Repo struct {
	CreateFn                  func(ctx context.Context, s *session.Session) error
	GetBySessionIDFn          func(ctx context.Context, sessionID string) (*session.Session, error)
	GetBySessionIDForUpdateFn func(ctx context.Context, sessionID string) (*session.Session, error)
	GetActiveByOrderIDFn      func(ctx context.Context, orderID string) (*session.Session, error)
	ListPresentedFn           func(ctx context.Context) ([]*session.Session, error)
	SaveFn                    func(ctx context.Context, s *session.Session) error
}

func (m *Repo) Create(ctx context.Context, s *session.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	return errUnimplemented
}

func (m *Repo) GetBySessionID(ctx context.Context, sessionID string) (*session.Session, error) {
	if m.GetBySessionIDFn != nil {
		return m.GetBySessionIDFn(ctx, sessionID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*session.Session, error) {
	if m.GetBySessionIDForUpdateFn != nil {
		return m.GetBySessionIDForUpdateFn(ctx, sessionID)
	}
	if m.GetBySessionIDFn != nil {
		return m.GetBySessionIDFn(ctx, sessionID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetActiveByOrderID(ctx context.Context, orderID string) (*session.Session, error) {
	if m.GetActiveByOrderIDFn != nil {
		return m.GetActiveByOrderIDFn(ctx, orderID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListPresented(ctx context.Context) ([]*session.Session, error) {
	if m.ListPresentedFn != nil {
		return m.ListPresentedFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, s *session.Session) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s)
	}
	return errUnimplemented
}
