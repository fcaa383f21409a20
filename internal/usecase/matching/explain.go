package matching

import (
	"fmt"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/session"
)

// Thresholds for explanation rules. Like the scoring constants these are
// policy, kept stable so explanation text is reproducible.
const (
	highCreditThreshold    = 80
	excellentOnTimePct     = 95
	amountDiffNoticePct    = 0.10
	termDiffNoticePct      = 0.10
	rateAdvantageMarginPct = 2
	fewTransactionsBelow   = 5
)

// Explain generates the highlight and difference strings for one scored
// candidate. Rules run in a fixed order so output is reproducible; each rule
// looks at one sub-score or field independently.
func Explain(o, cand *order.Order, p *profile.Profile, s session.SubScores) (highlights, differences []string) {
	highlights = make([]string, 0, 5)
	differences = make([]string, 0, 5)

	// highlights, in order
	if s.CreditHistory >= highCreditThreshold {
		highlights = append(highlights, fmt.Sprintf("high credit score (%.0f)", s.CreditHistory))
	}
	if s.RepaymentHistory >= excellentOnTimePct {
		highlights = append(highlights, fmt.Sprintf("excellent on-time repayment rate (%.0f%%)", s.RepaymentHistory))
	}
	if o.CollateralRequired && p.OffersCollateral() && p.CollateralRatioPct >= o.CollateralRatioPct {
		highlights = append(highlights, fmt.Sprintf("collateral ratio %.0f%% meets requirement", p.CollateralRatioPct))
	}
	if len(o.IndustryPreference) > 0 && o.IndustryPreference.Contains(p.Industry) {
		highlights = append(highlights, fmt.Sprintf("industry match: %s", p.Industry))
	}
	switch o.Kind {
	case order.KindBorrow:
		if d := o.RateBound - cand.RateBound; d >= rateAdvantageMarginPct {
			highlights = append(highlights, fmt.Sprintf("rate %.1f%% below your cap", d))
		}
	case order.KindLend:
		if d := cand.RateBound - o.RateBound; d >= rateAdvantageMarginPct {
			highlights = append(highlights, fmt.Sprintf("borrower cap %.1f%% above your offer", d))
		}
	}

	// differences, in order
	if relDev(o.Amount, cand.Amount) > amountDiffNoticePct {
		differences = append(differences, fmt.Sprintf("amount differs by %+.0f %s", cand.Amount-o.Amount, o.Currency))
	}
	if relDev(float64(o.TermDays), float64(cand.TermDays)) > termDiffNoticePct {
		differences = append(differences, fmt.Sprintf("term differs by %+d days", cand.TermDays-o.TermDays))
	}
	if s.IndustryFit == industryMismatchScore {
		differences = append(differences, "no industry match on file")
	}
	if !p.OffersCollateral() {
		differences = append(differences, "no collateral offered")
	}
	if p.TotalTransactions < fewTransactionsBelow {
		differences = append(differences, fmt.Sprintf("only %d prior transactions", p.TotalTransactions))
	}
	return highlights, differences
}
