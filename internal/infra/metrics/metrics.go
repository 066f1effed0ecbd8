// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_resolutions_total",
			Help: "Deep-link resolutions by decision outcome.",
		},
		[]string{"outcome"},
	)

	membershipChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_checks_total",
			Help: "Force-channel membership queries by result.",
		},
		[]string{"result"},
	)

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_redemptions_total",
			Help: "Token redemption attempts by result.",
		},
		[]string{"result"},
	)

	linksMinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "links_minted_total",
			Help: "Minted link codes by target kind (counted per pair).",
		},
		[]string{"kind"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deliveries_total",
			Help: "Delivered content units by kind and success.",
		},
		[]string{"kind", "success"},
	)

	deliveryLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_latency_ms",
			Help:    "Per-item delivery latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"kind"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			resolutionsTotal, membershipChecks, redemptionsTotal,
			linksMinted, deliveriesTotal, deliveryLatencyMs,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncResolution(outcome string) {
	resolutionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncMembershipCheck(result string) {
	membershipChecks.WithLabelValues(norm(result)).Inc()
}

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func IncLinkMinted(kind string) {
	linksMinted.WithLabelValues(norm(kind)).Inc()
}

func ObserveDelivery(kind string, latencyMs int, success bool) {
	ok := "false"
	if success {
		ok = "true"
	}
	deliveriesTotal.WithLabelValues(norm(kind), ok).Inc()
	deliveryLatencyMs.WithLabelValues(norm(kind)).Observe(float64(latencyMs))
}
