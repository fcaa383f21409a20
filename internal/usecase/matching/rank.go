package matching

import (
	"sort"

	"wello-backend/internal/domain/session"
)

// Rank sorts candidates best-first, in place. Ties break on the credit
// history sub-score, then the earlier candidate order, then the candidate
// order id, so the result is total and deterministic.
func Rank(cands []session.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := &cands[i], &cands[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.SubScores.CreditHistory != b.SubScores.CreditHistory {
			return a.SubScores.CreditHistory > b.SubScores.CreditHistory
		}
		if !a.OrderCreatedAt.Equal(b.OrderCreatedAt) {
			return a.OrderCreatedAt.Before(b.OrderCreatedAt)
		}
		return a.OrderID < b.OrderID
	})
}
