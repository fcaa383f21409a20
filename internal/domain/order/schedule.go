package order

import (
	"math"
	"time"
)

// Installment is one line of a repayment schedule.
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"due_date"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Total     float64   `json:"total"`
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// BuildSchedule expands loan terms into installments.
//
// Periods are 30-day months: n = floor(termDays/30), minimum 1. Intermediate
// installments fall on 30-day marks, the final one on start+termDays. Amounts
// are rounded to 2dp and the final installment absorbs rounding drift, so the
// principal column always sums exactly to the loan amount.
func BuildSchedule(principal, annualRatePct float64, termDays int, method RepaymentMethod, start time.Time) []Installment {
	if principal <= 0 || termDays <= 0 {
		return nil
	}

	n := termDays / 30
	if n < 1 {
		n = 1
	}
	end := start.AddDate(0, 0, termDays)
	due := func(i int) time.Time { // i is 1-based
		if i == n {
			return end
		}
		return start.AddDate(0, 0, 30*i)
	}

	// Bullet repays everything at maturity regardless of term length.
	if method == MethodBullet || n == 1 {
		interest := round2(principal * annualRatePct / 100 * float64(termDays) / 365)
		return []Installment{{
			Number:    1,
			DueDate:   end,
			Principal: round2(principal),
			Interest:  interest,
			Total:     round2(principal + interest),
		}}
	}

	// Per-period rate for 30-day months.
	r := annualRatePct / 100 / 365 * 30

	out := make([]Installment, 0, n)
	switch method {
	case MethodEqualInstallment:
		// standard annuity payment
		pow := math.Pow(1+r, float64(n))
		pmt := principal * r * pow / (pow - 1)
		bal := principal
		for i := 1; i <= n; i++ {
			interest := round2(bal * r)
			var pr float64
			if i == n {
				pr = round2(bal)
			} else {
				pr = round2(pmt - interest)
			}
			bal -= pr
			out = append(out, Installment{
				Number: i, DueDate: due(i),
				Principal: pr, Interest: interest, Total: round2(pr + interest),
			})
		}

	case MethodInterestFirst:
		interest := round2(principal * r)
		for i := 1; i <= n; i++ {
			pr := 0.0
			if i == n {
				pr = round2(principal)
			}
			out = append(out, Installment{
				Number: i, DueDate: due(i),
				Principal: pr, Interest: interest, Total: round2(pr + interest),
			})
		}

	case MethodEqualPrincipal:
		per := principal / float64(n)
		bal := principal
		for i := 1; i <= n; i++ {
			interest := round2(bal * r)
			var pr float64
			if i == n {
				pr = round2(bal)
			} else {
				pr = round2(per)
			}
			bal -= pr
			out = append(out, Installment{
				Number: i, DueDate: due(i),
				Principal: pr, Interest: interest, Total: round2(pr + interest),
			})
		}
	}
	return out
}

// Schedule builds the repayment schedule implied by the order's own terms.
func (o *Order) Schedule(start time.Time) []Installment {
	return BuildSchedule(o.Amount, o.RateBound, o.TermDays, o.RepaymentMethod, start)
}
