package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReviewMetrics tracks the health of the review aggregation pipeline.
type ReviewMetrics struct {
	reviews            *prometheus.CounterVec
	membersDropped     prometheus.Counter
	aggregationSkips   *prometheus.CounterVec
	metaReviewFallback prometheus.Counter
	reflectionRounds   prometheus.Histogram
	reflectionStops    *prometheus.CounterVec
}

var (
	defaultReviewMetrics     *ReviewMetrics
	defaultReviewMetricsOnce sync.Once
)

// NewReviewMetrics builds a ReviewMetrics recorder using the default registry.
func NewReviewMetrics() *ReviewMetrics {
	defaultReviewMetricsOnce.Do(func() {
		defaultReviewMetrics = newReviewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultReviewMetrics
}

// NewReviewMetricsWithRegisterer allows tests to provide a dedicated registry.
func NewReviewMetricsWithRegisterer(reg prometheus.Registerer) *ReviewMetrics {
	return newReviewMetrics(reg)
}

func newReviewMetrics(reg prometheus.Registerer) *ReviewMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &ReviewMetrics{
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholar",
			Subsystem: "review",
			Name:      "total",
			Help:      "Completed review runs by outcome",
		}, []string{"outcome"}),
		membersDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scholar",
			Subsystem: "review",
			Name:      "ensemble_members_dropped_total",
			Help:      "Ensemble members discarded because generation or extraction failed",
		}),
		aggregationSkips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholar",
			Subsystem: "review",
			Name:      "aggregation_skips_total",
			Help:      "Score fields left untouched because no ensemble member produced a valid value",
		}, []string{"field"}),
		metaReviewFallback: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scholar",
			Subsystem: "review",
			Name:      "meta_review_fallback_total",
			Help:      "Meta-review failures recovered by falling back to the first ensemble record",
		}),
		reflectionRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scholar",
			Subsystem: "review",
			Name:      "reflection_rounds",
			Help:      "Reflection rounds executed per review",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		}),
		reflectionStops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholar",
			Subsystem: "review",
			Name:      "reflection_stop_total",
			Help:      "Reflection loop terminations by reason",
		}, []string{"reason"}),
	}
}

// ObserveReview counts a finished review run ("ok", "empty_ensemble", "extraction", ...).
func (m *ReviewMetrics) ObserveReview(outcome string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(outcome).Inc()
}

// ObserveDroppedMembers counts discarded ensemble members.
func (m *ReviewMetrics) ObserveDroppedMembers(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.membersDropped.Add(float64(n))
}

// ObserveAggregationSkip counts a field that had no valid sample.
func (m *ReviewMetrics) ObserveAggregationSkip(field string) {
	if m == nil {
		return
	}
	m.aggregationSkips.WithLabelValues(field).Inc()
}

// ObserveMetaReviewFallback counts a recovered meta-review failure.
func (m *ReviewMetrics) ObserveMetaReviewFallback() {
	if m == nil {
		return
	}
	m.metaReviewFallback.Inc()
}

// ObserveReflection records how many rounds ran and why the loop stopped.
func (m *ReviewMetrics) ObserveReflection(rounds int, reason string) {
	if m == nil {
		return
	}
	m.reflectionRounds.Observe(float64(rounds))
	m.reflectionStops.WithLabelValues(reason).Inc()
}
