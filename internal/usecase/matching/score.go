package matching

import (
	"math"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/session"
)

// Penalty constants for termFit. Policy values: 50 points of penalty per 100%
// relative deviation per field, capped at 100, averaged over the three fields.
const (
	termFitPenaltyPer100Pct = 50
	industryMismatchScore   = 40 // partial credit, never zero
	uncollateralizedScore   = 20 // baseline risk when none required, none offered
	collateralFullMarginPct = 20 // margin over requirement that earns a full 100
)

func clamp100(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// Score computes the five sub-scores for one (order, candidate) pair. Pure
// and deterministic: no randomness, no wall clock.
func Score(o, cand *order.Order, p *profile.Profile) session.SubScores {
	return session.SubScores{
		CreditHistory:    clamp100(p.CreditScore()),
		TermFit:          clamp100(termFit(o, cand)),
		RepaymentHistory: clamp100(p.OnTimeRatePct),
		IndustryFit:      industryFit(o, p),
		RiskRating:       riskRating(o, p),
	}
}

// termFit measures how closely the candidate's terms track the originating
// order's, taking the originating side as reference.
func termFit(o, cand *order.Order) float64 {
	devs := []float64{
		relDev(o.Amount, cand.Amount),
		relDev(o.RateBound, cand.RateBound),
		relDev(float64(o.TermDays), float64(cand.TermDays)),
	}
	var penalty float64
	for _, d := range devs {
		penalty += math.Min(100, d*termFitPenaltyPer100Pct)
	}
	return 100 - penalty/float64(len(devs))
}

func relDev(ref, v float64) float64 {
	if ref == 0 {
		return 0
	}
	return math.Abs(ref-v) / ref
}

func industryFit(o *order.Order, p *profile.Profile) float64 {
	if len(o.IndustryPreference) == 0 || o.IndustryPreference.Contains(p.Industry) {
		return 100
	}
	return industryMismatchScore
}

// riskRating derives from collateral adequacy. A pledge 20+ points over the
// requirement scores 100, an exact match 50, and a pair that neither requires
// nor pledges collateral sits at the uncollateralized baseline.
func riskRating(o *order.Order, p *profile.Profile) float64 {
	var required float64
	if o.CollateralRequired {
		required = o.CollateralRatioPct
	}
	if !p.OffersCollateral() {
		if required == 0 {
			return uncollateralizedScore
		}
		return 0 // should have been filtered out already
	}
	margin := p.CollateralRatioPct - required
	return clamp100(50 + margin*50/collateralFullMarginPct)
}

// Composite folds the sub-scores into the single 0-100 display score.
func Composite(s session.SubScores, w Weights) int {
	v := s.CreditHistory*w.CreditHistory +
		s.TermFit*w.TermFit +
		s.RepaymentHistory*w.RepaymentHistory +
		s.IndustryFit*w.IndustryFit +
		s.RiskRating*w.RiskRating
	return int(clamp100(math.Round(v / 100)))
}
