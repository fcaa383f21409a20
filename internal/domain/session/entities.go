package session

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wello-backend/internal/domain/order"
)

var (
	ErrNotFound             = errors.New("session not found")
	ErrInvalidOrderState    = errors.New("order is not in the required state")
	ErrInvalidSessionState  = errors.New("session is not in the required state")
	ErrSessionAlreadyActive = errors.New("order already has an active session")
	ErrConflictingAccept    = errors.New("session already accepted with a different candidate")
	ErrCandidateNotFound    = errors.New("candidate is not part of this session")
)

type State string

const (
	StateScoring   State = "scoring"
	StatePresented State = "presented"
	StateAccepted  State = "accepted"
	StateRejected  State = "rejected"
	StateExpired   State = "expired"
)

// Terminal reports whether no further transitions are allowed from s.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateRejected || s == StateExpired
}

// SubScores are the five weighted components of the match score, each 0-100.
type SubScores struct {
	CreditHistory    float64 `json:"credit_history"`
	TermFit          float64 `json:"term_fit"`
	RepaymentHistory float64 `json:"repayment_history"`
	IndustryFit      float64 `json:"industry_fit"`
	RiskRating       float64 `json:"risk_rating"`
}

// Candidate is one scored counter-order, frozen at scoring time. It echoes the
// candidate's terms so the result stays renderable even after the live order
// changes.
type Candidate struct {
	CandidateID string `json:"candidate_id"`
	OrderID     string `json:"order_id"`
	OwnerID     string `json:"owner_id"`

	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	RateBound       float64 `json:"rate_bound"`
	TermDays        int     `json:"term_days"`
	RepaymentMethod string  `json:"repayment_method"`

	CreditScore        float64 `json:"credit_score"`
	CollateralOffered  bool    `json:"collateral_offered"`
	CollateralRatioPct float64 `json:"collateral_ratio_pct,omitempty"`

	SubScores      SubScores `json:"sub_scores"`
	CompositeScore int       `json:"composite_score"`

	Highlights  []string `json:"highlights"`
	Differences []string `json:"differences"`

	// OrderCreatedAt is the candidate order's creation time, kept for the
	// deterministic tie-break.
	OrderCreatedAt time.Time `json:"order_created_at"`
}

// CandidateList is the ranked result set, stored as a JSON column.
type CandidateList []Candidate

func (l CandidateList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *CandidateList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("candidatelist: unsupported scan type %T", src)
}

// Find returns the candidate with the given id, or nil.
func (l CandidateList) Find(candidateID string) *Candidate {
	for i := range l {
		if l[i].CandidateID == candidateID {
			return &l[i]
		}
	}
	return nil
}

// Session owns one matching attempt for one originating order. The candidate
// pool and ranked results are snapshots: later changes to live orders never
// retroactively alter a session.
type Session struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	SessionID string `gorm:"size:36;uniqueIndex:ux_sessions_session_id" json:"session_id"`
	OrderID   string `gorm:"size:32;index:idx_sessions_order" json:"order_id"`

	Pool    order.StringList `gorm:"type:json" json:"candidate_pool"`
	Results CandidateList    `gorm:"type:json" json:"ranked_results"`

	State               State  `gorm:"size:16;default:'scoring';index:idx_sessions_state" json:"state"`
	AcceptedCandidateID string `gorm:"size:36" json:"accepted_candidate_id,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

func (Session) TableName() string { return "match_sessions" }
