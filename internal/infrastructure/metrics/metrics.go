package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wello_orders_submitted_total",
		Help: "Orders accepted at the boundary.",
	})

	MatchSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wello_match_sessions_total",
		Help: "Match session transitions by resulting state.",
	}, []string{"state"})

	CandidatesScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wello_candidates_scored_total",
		Help: "Candidates that passed eligibility and were scored.",
	})

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wello_match_pipeline_seconds",
		Help:    "Wall time of one filter/score/rank run.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the default registry (mounted on /metrics).
func Handler() http.Handler { return promhttp.Handler() }
