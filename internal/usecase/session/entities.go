package session

import (
	"time"

	domain "wello-backend/internal/domain/session"
)

type SessionDTO struct {
	SessionID           string             `json:"session_id"`
	OrderID             string             `json:"order_id"`
	State               string             `json:"state"`
	Results             []domain.Candidate `json:"ranked_results"`
	AcceptedCandidateID string             `json:"accepted_candidate_id,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	DecidedAt           *time.Time         `json:"decided_at,omitempty"`
}

type AcceptResult struct {
	SessionID        string    `json:"session_id"`
	CandidateID      string    `json:"candidate_id"`
	OrderID          string    `json:"order_id"`
	CandidateOrderID string    `json:"candidate_order_id"`
	MatchScore       int       `json:"match_score"`
	AcceptedAt       time.Time `json:"accepted_at"`
}

func toDTO(s *domain.Session) *SessionDTO {
	return &SessionDTO{
		SessionID:           s.SessionID,
		OrderID:             s.OrderID,
		State:               string(s.State),
		Results:             s.Results,
		AcceptedCandidateID: s.AcceptedCandidateID,
		CreatedAt:           s.CreatedAt,
		DecidedAt:           s.DecidedAt,
	}
}
