package matching

import (
	"time"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
)

// Filter applies the hard eligibility constraints and returns the surviving
// candidates in pool order. It is pure: no side effects, and an empty result
// is a valid outcome, not an error.
//
// profiles must be keyed by owner id and should contain the originating
// order's owner as well; a candidate whose owner has no profile cannot be
// scored and is excluded.
func Filter(o *order.Order, pool []*order.Order, profiles map[string]*profile.Profile, now time.Time) []*order.Order {
	out := make([]*order.Order, 0, len(pool))
	for _, cand := range pool {
		if eligible(o, cand, profiles, now) {
			out = append(out, cand)
		}
	}
	return out
}

func eligible(o, cand *order.Order, profiles map[string]*profile.Profile, now time.Time) bool {
	if cand.Kind != o.Kind.Opposite() {
		return false
	}
	if cand.OwnerID == o.OwnerID {
		return false
	}
	// no implicit currency conversion
	if cand.Currency != o.Currency {
		return false
	}
	if !cand.Open(now) {
		return false
	}
	candProfile := profiles[cand.OwnerID]
	if candProfile == nil {
		return false
	}

	// rate compatibility: the offered lend rate must not exceed the borrow cap
	lendSide, borrowSide := o, cand
	if o.Kind == order.KindBorrow {
		lendSide, borrowSide = cand, o
	}
	if lendSide.RateBound > borrowSide.RateBound {
		return false
	}

	// lend-side counterparty constraints apply to the borrow-side profile,
	// whichever side originated the session
	borrowProfile := profiles[borrowSide.OwnerID]
	if lendSide.MinCreditScore != nil {
		if borrowProfile == nil || borrowProfile.CreditScore() < float64(*lendSide.MinCreditScore) {
			return false
		}
	}
	if lendSide.MinPriorTransactions != nil {
		if borrowProfile == nil || borrowProfile.TotalTransactions < *lendSide.MinPriorTransactions {
			return false
		}
	}

	// a side requiring collateral needs the counterparty to pledge at least
	// the required ratio
	if !collateralSatisfied(o, profiles[cand.OwnerID]) {
		return false
	}
	if !collateralSatisfied(cand, profiles[o.OwnerID]) {
		return false
	}
	return true
}

func collateralSatisfied(demanding *order.Order, counterparty *profile.Profile) bool {
	if !demanding.CollateralRequired {
		return true
	}
	if counterparty == nil || !counterparty.OffersCollateral() {
		return false
	}
	return counterparty.CollateralRatioPct >= demanding.CollateralRatioPct
}
