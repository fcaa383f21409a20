package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	domain "wello-backend/internal/domain/session"
	"wello-backend/internal/domain/uow"
	"wello-backend/internal/infrastructure/metrics"
	"wello-backend/internal/usecase/matching"
)

// Manager owns the lifecycle of match sessions. All state transitions for a
// given order are serialized through a keyed mutex and applied atomically
// inside a transaction; cross-order operations run in parallel.
type Manager struct {
	uow      uow.UnitOfWork
	orders   order.Repository
	profiles profile.Repository
	sessions domain.Repository
	engine   *matching.Engine
	log      *zap.Logger

	locks *keyedMutex
	now   func() time.Time
}

func NewManager(u uow.UnitOfWork, orders order.Repository, profiles profile.Repository,
	sessions domain.Repository, engine *matching.Engine, log *zap.Logger) *Manager {
	return &Manager{
		uow:      u,
		orders:   orders,
		profiles: profiles,
		sessions: sessions,
		engine:   engine,
		log:      log,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source (tests).
func (m *Manager) WithClock(fn func() time.Time) *Manager {
	m.now = fn
	return m
}

// CreateSession runs the full filter -> score -> rank pipeline for a pending
// order and persists the result as a presented session. Zero eligible
// candidates is a valid outcome: the session is presented with empty results.
func (m *Manager) CreateSession(ctx context.Context, orderID string) (*SessionDTO, error) {
	m.locks.Lock(orderID)
	defer m.locks.Unlock(orderID)
	now := m.now()

	o, err := m.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, err
	}

	if existing, err := m.sessions.GetActiveByOrderID(ctx, orderID); err == nil {
		// a presented session whose decision window passed is reconciled
		// here instead of blocking resubmission
		if existing.State == domain.StatePresented && now.After(o.ExpiresAt) {
			existing.State = domain.StateExpired
			existing.DecidedAt = &now
			if err := m.sessions.Save(ctx, existing); err != nil {
				return nil, err
			}
			metrics.MatchSessions.WithLabelValues(string(domain.StateExpired)).Inc()
		} else {
			return nil, domain.ErrSessionAlreadyActive
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !o.Open(now) {
		return nil, domain.ErrInvalidOrderState
	}

	pool, err := m.orders.ListOpenByKind(ctx, o.Kind.Opposite(), o.Currency, now)
	if err != nil {
		return nil, err
	}
	ownerIDs := make([]string, 0, len(pool)+1)
	ownerIDs = append(ownerIDs, o.OwnerID)
	for _, c := range pool {
		ownerIDs = append(ownerIDs, c.OwnerID)
	}
	profiles, err := m.profiles.GetByProfileIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	cands := m.engine.Run(matching.Input{Order: o, Pool: pool, Profiles: profiles, Now: now})
	metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	metrics.CandidatesScored.Add(float64(len(cands)))

	poolIDs := make(order.StringList, len(cands))
	for i := range cands {
		cands[i].CandidateID = uuid.NewString()
		poolIDs[i] = cands[i].OrderID
	}

	s := &domain.Session{
		SessionID: uuid.NewString(),
		OrderID:   o.OrderID,
		Pool:      poolIDs,
		Results:   cands,
		State:     domain.StateScoring,
	}
	err = m.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Sessions.Create(ctx, s); err != nil {
			return err
		}
		s.State = domain.StatePresented
		return r.Sessions.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	metrics.MatchSessions.WithLabelValues(string(domain.StatePresented)).Inc()
	m.log.Info("match session presented",
		zap.String("session_id", s.SessionID),
		zap.String("order_id", o.OrderID),
		zap.Int("pool_size", len(pool)),
		zap.Int("candidates", len(cands)))
	return toDTO(s), nil
}

// Get returns the session after lazy reconciliation: an externally cancelled
// order rejects its presented session, a passed expiry expires it.
func (m *Manager) Get(ctx context.Context, sessionID string) (*SessionDTO, error) {
	s, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	m.locks.Lock(s.OrderID)
	defer m.locks.Unlock(s.OrderID)

	err = m.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err = r.Sessions.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		_, err = m.reconcile(ctx, r, s, m.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTO(s), nil
}

// Accept moves a presented session to accepted and flips both orders to
// matched, atomically. Accepting an accepted session again with the same
// candidate is a no-op returning the same result; a different candidate is a
// conflict.
func (m *Manager) Accept(ctx context.Context, sessionID, candidateID string) (*AcceptResult, error) {
	s0, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	m.locks.Lock(s0.OrderID)
	defer m.locks.Unlock(s0.OrderID)
	now := m.now()

	var result *AcceptResult
	err = m.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Sessions.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if _, err := m.reconcile(ctx, r, s, now); err != nil {
			return err
		}

		switch s.State {
		case domain.StateAccepted:
			if s.AcceptedCandidateID != candidateID {
				return domain.ErrConflictingAccept
			}
			// idempotent replay
			c := s.Results.Find(candidateID)
			result = acceptResult(s, c)
			return nil
		case domain.StatePresented:
			// proceed
		default:
			return domain.ErrInvalidSessionState
		}

		c := s.Results.Find(candidateID)
		if c == nil {
			return domain.ErrCandidateNotFound
		}

		// lock both order rows in id order to avoid lock-order inversion
		// between concurrent accepts
		firstID, secondID := s.OrderID, c.OrderID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}
		first, err := r.Orders.GetByOrderIDForUpdate(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := r.Orders.GetByOrderIDForUpdate(ctx, secondID)
		if err != nil {
			return err
		}
		o, co := first, second
		if o.OrderID != s.OrderID {
			o, co = second, first
		}

		if o.Status != order.StatusPending {
			return domain.ErrInvalidOrderState
		}
		if !co.Open(now) {
			// candidate order was taken or withdrawn since scoring
			return domain.ErrInvalidOrderState
		}

		o.Status = order.StatusMatched
		o.StatusUpdatedAt = now
		co.Status = order.StatusMatched
		co.StatusUpdatedAt = now
		if err := r.Orders.Save(ctx, o); err != nil {
			return err
		}
		if err := r.Orders.Save(ctx, co); err != nil {
			return err
		}

		s.State = domain.StateAccepted
		s.AcceptedCandidateID = candidateID
		s.DecidedAt = &now
		if err := r.Sessions.Save(ctx, s); err != nil {
			return err
		}
		result = acceptResult(s, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MatchSessions.WithLabelValues(string(domain.StateAccepted)).Inc()
	m.log.Info("match accepted",
		zap.String("session_id", sessionID),
		zap.String("candidate_id", candidateID),
		zap.String("order_id", s0.OrderID))
	return result, nil
}

// Reject returns a presented session to the rejected state; the originating
// order stays pending and may be matched again.
func (m *Manager) Reject(ctx context.Context, sessionID string) error {
	s0, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	m.locks.Lock(s0.OrderID)
	defer m.locks.Unlock(s0.OrderID)
	now := m.now()

	err = m.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Sessions.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if _, err := m.reconcile(ctx, r, s, now); err != nil {
			return err
		}
		if s.State != domain.StatePresented {
			return domain.ErrInvalidSessionState
		}
		s.State = domain.StateRejected
		s.DecidedAt = &now
		return r.Sessions.Save(ctx, s)
	})
	if err != nil {
		return err
	}

	metrics.MatchSessions.WithLabelValues(string(domain.StateRejected)).Inc()
	m.log.Info("match rejected", zap.String("session_id", sessionID))
	return nil
}

// Expire is the system-side transition for presented sessions whose order
// expiry passed. Expiring an already expired session is a no-op, so the sweep
// can race lazy reconciliation safely. The order stays pending and may be
// resubmitted.
func (m *Manager) Expire(ctx context.Context, sessionID string) error {
	s0, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	m.locks.Lock(s0.OrderID)
	defer m.locks.Unlock(s0.OrderID)
	now := m.now()

	return m.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Sessions.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if s.State == domain.StateExpired {
			return nil
		}
		if s.State != domain.StatePresented {
			return domain.ErrInvalidSessionState
		}
		o, err := r.Orders.GetByOrderID(ctx, s.OrderID)
		if err != nil {
			return err
		}
		if !now.After(o.ExpiresAt) {
			return domain.ErrInvalidSessionState
		}
		s.State = domain.StateExpired
		s.DecidedAt = &now
		if err := r.Sessions.Save(ctx, s); err != nil {
			return err
		}
		metrics.MatchSessions.WithLabelValues(string(domain.StateExpired)).Inc()
		return nil
	})
}

// ExpireDue sweeps all presented sessions and expires the ones whose order
// expiry passed. Individual failures are logged, not fatal; the next sweep
// retries them.
func (m *Manager) ExpireDue(ctx context.Context) (int, error) {
	due, err := m.sessions.ListPresented(ctx)
	if err != nil {
		return 0, err
	}
	expired := 0
	now := m.now()
	for _, s := range due {
		o, err := m.orders.GetByOrderID(ctx, s.OrderID)
		if err != nil || !now.After(o.ExpiresAt) {
			continue
		}
		if err := m.Expire(ctx, s.SessionID); err != nil {
			if !errors.Is(err, domain.ErrInvalidSessionState) {
				m.log.Warn("expire sweep failed",
					zap.String("session_id", s.SessionID), zap.Error(err))
			}
			continue
		}
		expired++
	}
	return expired, nil
}

// reconcile applies the lazy transitions for a presented session: rejected if
// the order was cancelled externally, expired if the order expiry passed.
// Returns whether the session changed.
func (m *Manager) reconcile(ctx context.Context, r uow.Repos, s *domain.Session, now time.Time) (bool, error) {
	if s.State != domain.StatePresented {
		return false, nil
	}
	o, err := r.Orders.GetByOrderID(ctx, s.OrderID)
	if err != nil {
		return false, err
	}
	switch {
	case o.Status == order.StatusCancelled:
		s.State = domain.StateRejected
	case now.After(o.ExpiresAt):
		s.State = domain.StateExpired
	default:
		return false, nil
	}
	s.DecidedAt = &now
	if err := r.Sessions.Save(ctx, s); err != nil {
		return false, err
	}
	metrics.MatchSessions.WithLabelValues(string(s.State)).Inc()
	return true, nil
}

func acceptResult(s *domain.Session, c *domain.Candidate) *AcceptResult {
	res := &AcceptResult{
		SessionID:   s.SessionID,
		CandidateID: s.AcceptedCandidateID,
	}
	res.OrderID = s.OrderID
	if s.DecidedAt != nil {
		res.AcceptedAt = *s.DecidedAt
	}
	if c != nil {
		res.CandidateOrderID = c.OrderID
		res.MatchScore = c.CompositeScore
	}
	return res
}
