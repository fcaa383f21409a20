package matching

import (
	"strings"
	"testing"
	"time"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func borrowOrder() *order.Order {
	return &order.Order{
		OrderID:         "borrow0000000000000000000000000a",
		Kind:            order.KindBorrow,
		OwnerID:         strings.Repeat("b", 32),
		Amount:          12000,
		Currency:        "USDT",
		RateBound:       20, // max acceptable
		TermDays:        60,
		RepaymentMethod: order.MethodEqualInstallment,
		Status:          order.StatusPending,
		CreatedAt:       now.Add(-time.Hour),
		ExpiresAt:       now.AddDate(0, 0, 7),
	}
}

func lendCandidate(id string) *order.Order {
	return &order.Order{
		OrderID:         id,
		Kind:            order.KindLend,
		OwnerID:         "owner-" + id,
		Amount:          12000,
		Currency:        "USDT",
		RateBound:       18.5, // offered
		TermDays:        60,
		RepaymentMethod: order.MethodEqualInstallment,
		Status:          order.StatusPending,
		CreatedAt:       now.Add(-2 * time.Hour),
		ExpiresAt:       now.AddDate(0, 0, 7),
	}
}

func profileFor(o *order.Order) *profile.Profile {
	return &profile.Profile{
		ProfileID:   o.OwnerID,
		DisplayName: "Counterparty",
		Industry:    "cross-border trade",
		Breakdown: profile.Breakdown{
			{Category: "repayment history", Score: 88, WeightPct: 50},
			{Category: "transaction frequency", Score: 76, WeightPct: 50},
		},
		OnTimeRatePct:      96,
		TotalTransactions:  12,
		CollateralType:     "crypto",
		CollateralRatioPct: 130,
	}
}

func poolWith(cands ...*order.Order) ([]*order.Order, map[string]*profile.Profile) {
	profiles := make(map[string]*profile.Profile, len(cands))
	for _, c := range cands {
		profiles[c.OwnerID] = profileFor(c)
	}
	return cands, profiles
}

func TestFilter_KeepsCompatibleCandidate(t *testing.T) {
	o := borrowOrder()
	pool, profiles := poolWith(lendCandidate("cand1"))
	got := Filter(o, pool, profiles, now)
	if len(got) != 1 {
		t.Fatalf("eligible = %d, want 1", len(got))
	}
}

func TestFilter_EmptyPoolIsValidOutcome(t *testing.T) {
	o := borrowOrder()
	got := Filter(o, nil, nil, now)
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %v", got)
	}
}

func TestFilter_Excludes(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(o *order.Order, cand *order.Order, p *profile.Profile)
	}{
		{"same kind", func(o, cand *order.Order, p *profile.Profile) { cand.Kind = order.KindBorrow }},
		{"same owner", func(o, cand *order.Order, p *profile.Profile) { cand.OwnerID = o.OwnerID }},
		{"currency mismatch", func(o, cand *order.Order, p *profile.Profile) { cand.Currency = "USDC" }},
		{"offered rate above cap", func(o, cand *order.Order, p *profile.Profile) { cand.RateBound = 21 }},
		{"candidate not pending", func(o, cand *order.Order, p *profile.Profile) { cand.Status = order.StatusMatched }},
		{"candidate expired", func(o, cand *order.Order, p *profile.Profile) { cand.ExpiresAt = now.Add(-time.Minute) }},
		{"candidate expires exactly now", func(o, cand *order.Order, p *profile.Profile) { cand.ExpiresAt = now }},
		{"order requires more collateral than offered", func(o, cand *order.Order, p *profile.Profile) {
			o.CollateralRequired = true
			o.CollateralRatioPct = 150
		}},
		{"order requires collateral, none offered", func(o, cand *order.Order, p *profile.Profile) {
			o.CollateralRequired = true
			o.CollateralRatioPct = 100
			p.CollateralType = ""
			p.CollateralRatioPct = 0
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := borrowOrder()
			cand := lendCandidate("cand1")
			pool, profiles := poolWith(cand)
			tc.mutate(o, cand, profiles[cand.OwnerID])
			if got := Filter(o, pool, profiles, now); len(got) != 0 {
				t.Fatalf("candidate should be excluded, got %d", len(got))
			}
		})
	}
}

func TestFilter_LendConstraintsAgainstBorrowerProfile(t *testing.T) {
	// Lend order with constraints, borrow candidates with varying profiles.
	o := lendCandidate("lender1")
	min := 80
	tx := 10
	o.MinCreditScore = &min
	o.MinPriorTransactions = &tx

	strong := borrowOrder()
	strong.OrderID = "strong00000000000000000000000000"
	strong.OwnerID = strings.Repeat("d", 32)
	weak := borrowOrder()
	weak.OrderID = "weak0000000000000000000000000000"
	weak.OwnerID = strings.Repeat("e", 32)

	pool, profiles := poolWith(strong, weak)
	profiles[strong.OwnerID].Breakdown = profile.Breakdown{{Category: "repayment history", Score: 85, WeightPct: 100}}
	profiles[weak.OwnerID].Breakdown = profile.Breakdown{{Category: "repayment history", Score: 60, WeightPct: 100}}

	got := Filter(o, pool, profiles, now)
	if len(got) != 1 || got[0].OrderID != strong.OrderID {
		t.Fatalf("want only the strong borrower, got %v", got)
	}

	// few prior transactions knocks the strong borrower out too
	profiles[strong.OwnerID].TotalTransactions = 3
	if got := Filter(o, pool, profiles, now); len(got) != 0 {
		t.Fatalf("want 0 after transaction constraint, got %d", len(got))
	}
}

func TestFilter_CandidateConstraintCheckedAgainstOriginatingOwner(t *testing.T) {
	// A borrow order should not match a lender whose min credit score the
	// borrower fails.
	o := borrowOrder()
	cand := lendCandidate("cand1")
	min := 90
	cand.MinCreditScore = &min

	pool, profiles := poolWith(cand)
	profiles[o.OwnerID] = profileFor(o) // composite 82
	if got := Filter(o, pool, profiles, now); len(got) != 0 {
		t.Fatalf("borrower below lender threshold should not match, got %d", len(got))
	}

	// and with no borrower profile on file the constraint cannot be proven
	delete(profiles, o.OwnerID)
	if got := Filter(o, pool, profiles, now); len(got) != 0 {
		t.Fatalf("missing borrower profile should fail the constraint, got %d", len(got))
	}
}

func TestFilter_MissingCandidateProfileExcluded(t *testing.T) {
	o := borrowOrder()
	cand := lendCandidate("cand1")
	pool := []*order.Order{cand}
	if got := Filter(o, pool, map[string]*profile.Profile{}, now); len(got) != 0 {
		t.Fatalf("unscorable candidate should be excluded, got %d", len(got))
	}
}

// Tightening any constraint must never grow the eligible set.
func TestFilter_Monotonicity(t *testing.T) {
	o := lendCandidate("lender1")
	var pool []*order.Order
	profiles := make(map[string]*profile.Profile)
	scores := []float64{55, 65, 75, 85, 95}
	for i, s := range scores {
		b := borrowOrder()
		b.OrderID = strings.Repeat(string(rune('f'+i)), 32)
		b.OwnerID = "owner" + b.OrderID[:27]
		pool = append(pool, b)
		p := profileFor(b)
		p.Breakdown = profile.Breakdown{{Category: "repayment history", Score: s, WeightPct: 100}}
		profiles[b.OwnerID] = p
	}

	prev := len(Filter(o, pool, profiles, now))
	for min := 0; min <= 100; min += 10 {
		m := min
		o.MinCreditScore = &m
		n := len(Filter(o, pool, profiles, now))
		if n > prev {
			t.Fatalf("minCreditScore=%d grew eligible set: %d -> %d", min, prev, n)
		}
		prev = n
	}

	// requiring collateral can only shrink further
	o.CollateralRequired = true
	o.CollateralRatioPct = 200
	if n := len(Filter(o, pool, profiles, now)); n > prev {
		t.Fatalf("collateral requirement grew eligible set: %d -> %d", prev, n)
	}
}
