package metrics

import (
	"context"
	"log"
	"time"

	"github.com/klazomenai/landing-service/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "landing"
)

// Outcomes recorded for client-capable layer requests
const (
	OutcomeGenerated = "generated"
	OutcomeReplayed  = "replayed"
	OutcomeRejected  = "rejected"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

var (
	// ViewsMountedTotal counts initial renders of the landing page
	ViewsMountedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_mounted_total",
			Help:      "Total number of landing views mounted",
		},
	)

	// ViewsActivatedTotal counts environment gates that flipped
	ViewsActivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_activated_total",
			Help:      "Total number of landing views whose environment gate opened",
		},
	)

	// LayerRequestsTotal counts client-capable pass requests by outcome
	LayerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_requests_total",
			Help:      "Client-capable pass requests by outcome",
		},
		[]string{"outcome"},
	)

	// GeneratedMarkersTotal counts stars and particles drawn
	GeneratedMarkersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generated_markers_total",
			Help:      "Markers generated by kind",
		},
		[]string{"kind"},
	)

	// ViewsActive tracks views currently held by the store
	ViewsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "views_active",
			Help:      "Number of mounted views held in the view store",
		},
	)
)

func init() {
	// Register metrics with Prometheus default registry
	prometheus.MustRegister(ViewsMountedTotal)
	prometheus.MustRegister(ViewsActivatedTotal)
	prometheus.MustRegister(LayerRequestsTotal)
	prometheus.MustRegister(GeneratedMarkersTotal)
	prometheus.MustRegister(ViewsActive)
}

// RecordActivation bumps the activation counters for one opened gate
func RecordActivation(stars, particles int) {
	ViewsActivatedTotal.Inc()
	GeneratedMarkersTotal.WithLabelValues("star").Add(float64(stars))
	GeneratedMarkersTotal.WithLabelValues("particle").Add(float64(particles))
}

// Collector provides methods to update metrics from storage
type Collector struct {
	store storage.Store
}

// NewCollector creates a new metrics collector
func NewCollector(store storage.Store) *Collector {
	return &Collector{
		store: store,
	}
}

// UpdateMetrics refreshes store-derived gauges.
// This is called on each /metrics scrape to ensure fresh data
func (c *Collector) UpdateMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := c.store.ActiveViews(ctx)
	if err != nil {
		log.Printf("Warning: Failed to count active views for metrics: %v", err)
		// Don't fail the metrics request - serve zero
		ViewsActive.Set(0)
		return
	}

	ViewsActive.Set(float64(count))
}
