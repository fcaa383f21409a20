package matching

import (
	"errors"
	"math"
)

// Weights are the composite-score weights in percent. They are policy, not
// contract: tunable, but must always sum to 100.
type Weights struct {
	CreditHistory    float64
	TermFit          float64
	RepaymentHistory float64
	IndustryFit      float64
	RiskRating       float64
}

// DefaultWeights is the product's published 30/25/20/15/10 scheme.
func DefaultWeights() Weights {
	return Weights{
		CreditHistory:    30,
		TermFit:          25,
		RepaymentHistory: 20,
		IndustryFit:      15,
		RiskRating:       10,
	}
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.CreditHistory, w.TermFit, w.RepaymentHistory, w.IndustryFit, w.RiskRating} {
		if v < 0 {
			return errors.New("weights must be >= 0")
		}
	}
	sum := w.CreditHistory + w.TermFit + w.RepaymentHistory + w.IndustryFit + w.RiskRating
	if math.Abs(sum-100) > 1e-9 {
		return errors.New("weights must sum to 100")
	}
	return nil
}
