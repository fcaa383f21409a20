package matching

import (
	"sync"
	"time"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/session"
)

// Input is one pipeline run: the originating order, the raw candidate pool
// and the profile snapshots of every involved owner (candidates and the
// originating owner).
type Input struct {
	Order    *order.Order
	Pool     []*order.Order
	Profiles map[string]*profile.Profile
	Now      time.Time
}

// Engine runs the filter -> score -> rank pipeline. It holds only immutable
// policy (weights, worker count), so a single Engine is safe for concurrent
// use.
type Engine struct {
	weights Weights
	workers int
}

// NewEngine validates the weight policy. workers caps scoring parallelism;
// 0 or 1 means sequential.
func NewEngine(w Weights, workers int) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if workers < 0 {
		workers = 0
	}
	return &Engine{weights: w, workers: workers}, nil
}

// Weights returns the engine's weight policy.
func (e *Engine) Weights() Weights { return e.weights }

// Run executes the pipeline. Output is deterministic for identical input:
// scoring is independent per candidate and results are keyed by index, so
// fan-out never affects ordering. Candidate ids are left empty; identity is
// the caller's concern.
func (e *Engine) Run(in Input) []session.Candidate {
	eligible := Filter(in.Order, in.Pool, in.Profiles, in.Now)
	out := make([]session.Candidate, len(eligible))

	build := func(i int) {
		cand := eligible[i]
		p := in.Profiles[cand.OwnerID] // present: Filter guarantees it
		subs := Score(in.Order, cand, p)
		highlights, differences := Explain(in.Order, cand, p, subs)
		out[i] = session.Candidate{
			OrderID:            cand.OrderID,
			OwnerID:            cand.OwnerID,
			Amount:             cand.Amount,
			Currency:           cand.Currency,
			RateBound:          cand.RateBound,
			TermDays:           cand.TermDays,
			RepaymentMethod:    string(cand.RepaymentMethod),
			CreditScore:        p.CreditScore(),
			CollateralOffered:  p.OffersCollateral(),
			CollateralRatioPct: p.CollateralRatioPct,
			SubScores:          subs,
			CompositeScore:     Composite(subs, e.weights),
			Highlights:         highlights,
			Differences:        differences,
			OrderCreatedAt:     cand.CreatedAt,
		}
	}

	if e.workers <= 1 || len(eligible) < 2 {
		for i := range eligible {
			build(i)
		}
	} else {
		idx := make(chan int)
		var wg sync.WaitGroup
		n := e.workers
		if n > len(eligible) {
			n = len(eligible)
		}
		wg.Add(n)
		for w := 0; w < n; w++ {
			go func() {
				defer wg.Done()
				for i := range idx {
					build(i)
				}
			}()
		}
		for i := range eligible {
			idx <- i
		}
		close(idx)
		wg.Wait()
	}

	Rank(out)
	return out
}
