package session

import "context"

type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*Session, error)
	// GetBySessionIDForUpdate locks the row; only meaningful inside a transaction.
	GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*Session, error)
	// GetActiveByOrderID returns the non-terminal (scoring/presented) session
	// for an order, if any.
	GetActiveByOrderID(ctx context.Context, orderID string) (*Session, error)
	// ListPresented returns all sessions awaiting a decision (expiry sweep input).
	ListPresented(ctx context.Context) ([]*Session, error)
	Save(ctx context.Context, s *Session) error
}
