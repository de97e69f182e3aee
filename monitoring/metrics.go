package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	saleConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_confirmations_total",
			Help: "Sale confirmation attempts by outcome",
		},
		[]string{"outcome"},
	)

	mirrorFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mirror_update_failures_total",
			Help: "Failed passenger name mirror updates",
		},
	)

	payoutsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payouts_created_total",
			Help: "Pending payout records created",
		},
	)

	confirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_confirm_duration_seconds",
			Help:    "Duration of sale confirmation requests",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

// TrackSaleConfirmation records one confirm attempt. Outcome is the coarse
// result class: success, rejected, conflict, error.
func TrackSaleConfirmation(outcome string) {
	saleConfirmations.WithLabelValues(outcome).Inc()
}

func TrackMirrorFailure() {
	mirrorFailures.Inc()
}

func TrackPayoutCreated() {
	payoutsCreated.Inc()
}

func TrackConfirmDuration(d time.Duration) {
	confirmDuration.Observe(d.Seconds())
}

// StartMetricsServer exposes /metrics on its own port so the scrape
// endpoint stays off the public API listener.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
}
