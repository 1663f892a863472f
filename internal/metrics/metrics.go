// Package metrics Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal 按产出结果的阶段统计推荐次数
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmusic_recommendations_total",
			Help: "Total number of recommendation requests by the stage that produced the result",
		},
		[]string{"stage"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodmusic_recommendation_duration_seconds",
			Help:    "Duration of recommendation pipeline runs in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	RecommendationSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodmusic_recommendation_songs",
			Help:    "Number of songs returned per recommendation",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 80},
		},
	)

	// ClassificationsTotal outcome 为情绪标签或错误类别
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmusic_classifications_total",
			Help: "Total number of sentiment classifications by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmusic_classification_duration_seconds",
			Help:    "Duration of sentiment classifier calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodmusic_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmusic_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmusic_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmusic_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodmusic_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordRecommendation 记录一次推荐
func RecordRecommendation(stage string, songs int, d time.Duration) {
	RecommendationsTotal.WithLabelValues(stage).Inc()
	RecommendationSize.Observe(float64(songs))
	RecommendationDuration.Observe(d.Seconds())
}

// RecordClassification 记录一次情感分类
func RecordClassification(backend, outcome string, d time.Duration) {
	ClassificationsTotal.WithLabelValues(backend, outcome).Inc()
	if d > 0 {
		ClassificationDuration.WithLabelValues(backend).Observe(d.Seconds())
	}
}

// RecordAPIRequest 记录一次 HTTP 请求
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
