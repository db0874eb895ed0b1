package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes recorded in ma_pagination_fetches_total.
const (
	outcomeSuccess    = "success"
	outcomeError      = "error"
	outcomeJoined     = "joined"
	outcomeExhausted  = "exhausted"
	outcomeSuperseded = "superseded"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_pagination_fetches_total",
		Help: "Fetch calls by entity kind and outcome",
	}, []string{"kind", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ma_pagination_fetch_duration_seconds",
		Help:    "Duration of page fetches including decode",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	pagesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_pagination_pages_decoded_total",
		Help: "Pages decoded successfully by entity kind",
	}, []string{"kind"})

	recordsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_pagination_records_appended_total",
		Help: "Records appended to managed collections by entity kind",
	}, []string{"kind"})

	staleCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_pagination_stale_completions_total",
		Help: "Request results discarded because the manager was reset",
	}, []string{"kind"})
)
