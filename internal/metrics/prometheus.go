package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PostsCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_posts_collected_total",
			Help: "Total posts returned by source collectors",
		},
		[]string{"source"},
	)

	PostsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_posts_ingested_total",
			Help: "Posts ingested, by source and outcome (new/duplicate)",
		},
		[]string{"source", "outcome"},
	)

	CollectionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_collection_runs_total",
			Help: "Collector runs per source by status",
		},
		[]string{"source", "status"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_analysis_duration_seconds",
			Help:    "Per-post analysis duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_analyses_total",
			Help: "Post analyses by classifier and status",
		},
		[]string{"classifier", "status"},
	)

	SentimentLabels = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_sentiment_labels_total",
			Help: "Sentiment labels assigned to posts",
		},
		[]string{"sentiment"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_hits_total",
			Help: "Read-side cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_misses_total",
			Help: "Read-side cache misses",
		},
		[]string{"cache_type"},
	)

	AnalysisTriggers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_analysis_triggers_total",
			Help: "Fire-and-forget analysis dispatches from the API service",
		},
	)
)

func Init() {
	prometheus.MustRegister(PostsCollected)
	prometheus.MustRegister(PostsIngested)
	prometheus.MustRegister(CollectionRuns)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(SentimentLabels)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(AnalysisTriggers)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
