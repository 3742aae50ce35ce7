// Package metrics instruments the chat pipeline with Prometheus
// collectors and a per-turn JSON record for log-based analysis.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	turnLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "emotiai_turn_latency_ms",
		Help:    "End-to-end latency of a pipeline operation in milliseconds",
		Buckets: []float64{25, 50, 100, 200, 400, 800, 1500, 3000, 6000, 12000},
	}, []string{"operation"})

	retrievalResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "emotiai_retrieval_results",
		Help:    "Number of guides returned per retrieval",
		Buckets: []float64{0, 1, 2, 3, 5, 10},
	})

	retrievalCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emotiai_retrieval_cache_total",
		Help: "Retrieval cache lookups by outcome",
	}, []string{"outcome"})

	generationFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emotiai_generation_fallback_total",
		Help: "Responses served from the canned fallback, by operation",
	}, []string{"operation"})

	backfillOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emotiai_backfill_documents_total",
		Help: "Backfill document outcomes",
	}, []string{"outcome"})

	promptTokens = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "emotiai_prompt_tokens",
		Help:    "Assembled prompt size in tokens",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 6000, 8000},
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(turnLatency, retrievalResults, retrievalCacheHits,
			generationFallbacks, backfillOutcomes, promptTokens)
	})
}

// ObserveTurn records latency for a pipeline operation (chat, takeaways,
// backfill).
func ObserveTurn(operation string, start time.Time) {
	ensureRegistered()
	turnLatency.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveRetrieval records how many guides a retrieval returned.
func ObserveRetrieval(results int) {
	ensureRegistered()
	retrievalResults.Observe(float64(results))
}

// IncCache records a retrieval cache hit or miss.
func IncCache(hit bool) {
	ensureRegistered()
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	retrievalCacheHits.WithLabelValues(outcome).Inc()
}

// IncFallback counts a canned-fallback response for an operation.
func IncFallback(operation string) {
	ensureRegistered()
	generationFallbacks.WithLabelValues(operation).Inc()
}

// ObserveBackfill records a backfill run's per-document outcomes.
func ObserveBackfill(updated, failed int) {
	ensureRegistered()
	backfillOutcomes.WithLabelValues("updated").Add(float64(updated))
	backfillOutcomes.WithLabelValues("failed").Add(float64(failed))
}

// ObservePromptTokens records the assembled prompt size.
func ObservePromptTokens(tokens int) {
	ensureRegistered()
	if tokens >= 0 {
		promptTokens.Observe(float64(tokens))
	}
}

// Collectors exposes all collectors for registration with a custom
// registry; callers using the default registry never need this.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		turnLatency, retrievalResults, retrievalCacheHits,
		generationFallbacks, backfillOutcomes, promptTokens,
	}
}
