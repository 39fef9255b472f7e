package metrics

import (
	"net/http"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Geocode outcomes recorded by GeocodeResults.
const (
	GeocodeMatched = "matched"
	GeocodeNoMatch = "no_match"
	GeocodeFailed  = "failed"
	GeocodeSkipped = "skipped"
)

// MetricsManager holds the service's Prometheus metrics.
type MetricsManager struct {
	Registry             *prometheus.Registry
	ListingsCreatedTotal prometheus.Counter
	ListingUpdatesTotal  prometheus.Counter
	ListingDeletesTotal  prometheus.Counter
	GeocodeResults       *prometheus.CounterVec
	APIErrorsTotal       *prometheus.CounterVec
	APILatency           *prometheus.HistogramVec
}

// NewMetricsManager registers all metrics on a fresh registry, so several
// managers (one per test) never collide.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	updated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_updates_total",
		Help:      "Total number of listings updated.",
	})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_deletes_total",
		Help:      "Total number of listings deleted.",
	})
	geocode := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "geocode_results_total",
		Help:      "Forward geocoding outcomes by operation.",
	}, []string{"operation", "outcome"})
	apiErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of failed HTTP requests by route and status.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(
		created,
		updated,
		deleted,
		geocode,
		apiErrors,
		latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:             registry,
		ListingsCreatedTotal: created,
		ListingUpdatesTotal:  updated,
		ListingDeletesTotal:  deleted,
		GeocodeResults:       geocode,
		APIErrorsTotal:       apiErrors,
		APILatency:           latency,
	}
}

// StartMetricsServer serves /metrics for registry on port. It blocks.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
