package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
)

var (
	rateResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quotecraft",
		Name:      "rate_resolutions_total",
		Help:      "Line rate resolutions by matching tier.",
	}, []string{"tier"})

	quotesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quotecraft",
		Name:      "quotes_saved_total",
		Help:      "Quotes written, by operation.",
	}, []string{"op"})

	exportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quotecraft",
		Name:      "export_duration_seconds",
		Help:      "Time spent rendering quote exports.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
)

// ObserveResolution counts one resolver outcome.
func ObserveResolution(tier pricing.Tier) {
	rateResolutions.WithLabelValues(tier.String()).Inc()
}

// ObserveQuoteSaved counts a quote create or update.
func ObserveQuoteSaved(op string) {
	quotesSaved.WithLabelValues(op).Inc()
}

// ObserveExport records how long an export took to render.
func ObserveExport(format string, started time.Time) {
	exportDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
}
