package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records engine outcomes for the add-to-cart and organize paths.
type CartMetrics struct {
	addAttempts      *prometheus.CounterVec
	violations       *prometheus.CounterVec
	organizeDuration prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer. A nil
// registerer yields a no-op recorder, which keeps tests quiet.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	addAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_add_attempts_total",
		Help: "Add-to-cart attempts partitioned by outcome.",
	}, []string{"result"})
	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_violations_total",
		Help: "Business-rule violations partitioned by the check that raised them.",
	}, []string{"check"})
	organizeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_organize_duration_seconds",
		Help:    "Time spent reorganizing a flat cart into its parent/child tree.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(addAttempts, violations, organizeDuration)
	return &CartMetrics{
		addAttempts:      addAttempts,
		violations:       violations,
		organizeDuration: organizeDuration,
	}
}

// IncAddAttempt increments the attempt counter for the given outcome.
func (c *CartMetrics) IncAddAttempt(result string) {
	if c == nil || c.addAttempts == nil {
		return
	}
	c.addAttempts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncViolation increments the violation counter for the named check.
func (c *CartMetrics) IncViolation(check string) {
	if c == nil || c.violations == nil {
		return
	}
	c.violations.WithLabelValues(normalizeLabel(check)).Inc()
}

// ObserveOrganize records the duration of one organize pass.
func (c *CartMetrics) ObserveOrganize(duration time.Duration) {
	if c == nil || c.organizeDuration == nil {
		return
	}
	c.organizeDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
