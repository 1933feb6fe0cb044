package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	persistWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchstore_persist_writes_total",
		Help: "Blob store writes by logical key and outcome",
	}, []string{"key", "outcome"}) // outcome=success|failure

	persistSuperseded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchstore_persist_superseded_total",
		Help: "Snapshots dropped because a newer one for the same key was queued",
	}, []string{"key"})

	loadResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchstore_load_total",
		Help: "Warm-start reads by logical key and outcome",
	}, []string{"key", "outcome"}) // outcome=loaded|missing|failed|corrupt

	catalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchstore_catalog_fetch_total",
		Help: "Catalog fetch attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// RecordPersistWrite counts one blob store write.
func RecordPersistWrite(key string, err error) {
	persistWrites.WithLabelValues(key, outcome(err)).Inc()
}

// RecordPersistSuperseded counts snapshots that never reached the blob store.
func RecordPersistSuperseded(key string, n uint64) {
	if n == 0 {
		return
	}
	persistSuperseded.WithLabelValues(key).Add(float64(n))
}

func RecordLoad(key, result string) {
	loadResults.WithLabelValues(key, result).Inc()
}

func RecordCatalogFetch(err error) {
	catalogFetches.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
