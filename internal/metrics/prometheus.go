package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xnosis_analysis_duration_seconds",
			Help:    "Analysis processing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"input_type"},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_analysis_total",
			Help: "Total number of analyses processed",
		},
		[]string{"status"},
	)

	EntitiesExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_entities_extracted_total",
			Help: "Total entities extracted by category",
		},
		[]string{"category"},
	)

	CriticalFindings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_critical_findings_total",
			Help: "Total critical findings flagged by severity",
		},
		[]string{"severity"},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xnosis_confidence_score",
			Help:    "Overall analysis confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	CorpusTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "xnosis_corpus_terms",
			Help: "Terms in the published corpus snapshot",
		},
	)

	CorpusReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_corpus_reloads_total",
			Help: "Total corpus snapshot reloads",
		},
		[]string{"status"},
	)

	TermsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_terms_loaded_total",
			Help: "Total terms inserted by source",
		},
		[]string{"source"},
	)

	GraphPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnosis_graph_publishes_total",
			Help: "Total analyses published to the knowledge graph",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(AnalysisTotal)
		prometheus.MustRegister(EntitiesExtracted)
		prometheus.MustRegister(CriticalFindings)
		prometheus.MustRegister(ConfidenceScore)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(CorpusTerms)
		prometheus.MustRegister(CorpusReloads)
		prometheus.MustRegister(TermsLoaded)
		prometheus.MustRegister(GraphPublishes)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
