package matching

import (
	"fmt"
	"reflect"
	"testing"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
)

func engineInput(t *testing.T, n int) Input {
	t.Helper()
	o := borrowOrder()
	pool := make([]*order.Order, 0, n)
	profiles := make(map[string]*profile.Profile, n)
	for i := 0; i < n; i++ {
		c := lendCandidate(fmt.Sprintf("cand%03d", i))
		c.RateBound = 12 + float64(i%8)
		c.Amount = 8000 + float64(i%5)*1000
		c.TermDays = []int{30, 60, 90}[i%3]
		pool = append(pool, c)
		p := profileFor(c)
		p.Breakdown = profile.Breakdown{{Category: "repayment history", Score: float64(60 + i%40), WeightPct: 100}}
		p.OnTimeRatePct = float64(80 + i%20)
		profiles[c.OwnerID] = p
	}
	return Input{Order: o, Pool: pool, Profiles: profiles, Now: now}
}

func TestEngine_RunDeterministic(t *testing.T) {
	e, err := NewEngine(DefaultWeights(), 0)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	in := engineInput(t, 40)
	first := e.Run(in)
	for i := 0; i < 5; i++ {
		if got := e.Run(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	seq, _ := NewEngine(DefaultWeights(), 0)
	par, _ := NewEngine(DefaultWeights(), 8)
	in := engineInput(t, 50)
	want := seq.Run(in)
	for i := 0; i < 3; i++ {
		if got := par.Run(in); !reflect.DeepEqual(got, want) {
			t.Fatal("parallel run diverges from sequential run")
		}
	}
}

func TestEngine_RankedBestFirst(t *testing.T) {
	e, _ := NewEngine(DefaultWeights(), 4)
	got := e.Run(engineInput(t, 20))
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	for i := 1; i < len(got); i++ {
		if got[i].CompositeScore > got[i-1].CompositeScore {
			t.Fatalf("results not sorted at %d: %d > %d", i, got[i].CompositeScore, got[i-1].CompositeScore)
		}
	}
}

func TestEngine_EmptyPool(t *testing.T) {
	e, _ := NewEngine(DefaultWeights(), 4)
	in := engineInput(t, 0)
	got := e.Run(in)
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil result, got %v", got)
	}
}

func TestNewEngine_RejectsBadWeights(t *testing.T) {
	w := DefaultWeights()
	w.RiskRating = 50
	if _, err := NewEngine(w, 4); err == nil {
		t.Fatal("expected weight validation error")
	}
}
