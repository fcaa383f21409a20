package profile

// Level is one tier of the progressive credit limit ladder: borrowers start
// small and unlock larger limits with repayment track record.
type Level struct {
	Level            int     `json:"level"`
	Name             string  `json:"name"`
	Limit            float64 `json:"limit"`
	MinTransactions  int     `json:"min_transactions"`
	MinOnTimeRatePct float64 `json:"min_on_time_rate_pct"`
}

// levels are ordered ascending; LevelFor walks them from the top.
var levels = []Level{
	{Level: 1, Name: "newcomer", Limit: 5_000, MinTransactions: 0, MinOnTimeRatePct: 0},
	{Level: 2, Name: "starter", Limit: 20_000, MinTransactions: 3, MinOnTimeRatePct: 90},
	{Level: 3, Name: "established", Limit: 50_000, MinTransactions: 8, MinOnTimeRatePct: 95},
	{Level: 4, Name: "advanced", Limit: 150_000, MinTransactions: 15, MinOnTimeRatePct: 98},
	{Level: 5, Name: "diamond", Limit: 500_000, MinTransactions: 30, MinOnTimeRatePct: 100},
}

// Levels returns a copy of the tier table.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// LevelFor returns the highest tier the profile qualifies for.
func (p *Profile) LevelFor() Level {
	for i := len(levels) - 1; i > 0; i-- {
		l := levels[i]
		if p.TotalTransactions >= l.MinTransactions && p.OnTimeRatePct >= l.MinOnTimeRatePct {
			return l
		}
	}
	return levels[0]
}
