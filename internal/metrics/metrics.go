package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_recommendations_total",
		Help: "Ranked recommendation batches served, by source",
	}, []string{"source"})
	Fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_fallbacks_total",
		Help: "Requests answered with random fallback posts, by endpoint",
	}, []string{"endpoint"})
	CrisisResponses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommender_crisis_responses_total",
		Help: "Analyses flagged with crisis indicators",
	})
	ImageCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_image_cache_total",
		Help: "Image search cache lookups, by result",
	}, []string{"result"})
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommender_rate_limited_total",
		Help: "Requests rejected by the API rate limiter",
	})
	Feedback = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_feedback_total",
		Help: "Feedback received, by helpful flag",
	}, []string{"helpful"})
	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommender_upstream_duration_seconds",
		Help:    "Latency of calls to external services",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)

func init() {
	prometheus.MustRegister(Recommendations, Fallbacks, CrisisResponses, ImageCache, RateLimited, Feedback, UpstreamDuration)
}

// ObserveUpstream registra la duracion de una llamada externa iniciada en start.
func ObserveUpstream(service string, start time.Time) {
	UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// IncFallback cuenta una respuesta servida con posts aleatorios.
func IncFallback(endpoint string) { Fallbacks.WithLabelValues(endpoint).Inc() }

func IncRecommendation(source string) { Recommendations.WithLabelValues(source).Inc() }

func IncImageCache(result string) { ImageCache.WithLabelValues(result).Inc() }

func IncFeedback(helpful bool) {
	label := "false"
	if helpful {
		label = "true"
	}
	Feedback.WithLabelValues(label).Inc()
}
