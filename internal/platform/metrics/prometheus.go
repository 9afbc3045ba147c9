package metrics

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry               *prometheus.Registry
	ListingsCreatedTotal   prometheus.Counter
	ListingsDeletedTotal   prometheus.Counter
	ContactEmailsSentTotal prometheus.Counter
	APIErrorsTotal         *prometheus.CounterVec
	APIRequestLatency      *prometheus.HistogramVec
}

// NewMetricsManager registers the collectors on a fresh registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_deleted_total",
		Help:      "Total number of listings deleted.",
	})
	contacted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_emails_sent_total",
		Help:      "Total number of buyer messages relayed to sellers.",
	})
	apiErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by route and error kind.",
	}, []string{"route", "kind"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		created,
		deleted,
		contacted,
		apiErrors,
		latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:               registry,
		ListingsCreatedTotal:   created,
		ListingsDeletedTotal:   deleted,
		ContactEmailsSentTotal: contacted,
		APIErrorsTotal:         apiErrors,
		APIRequestLatency:      latency,
	}
}

// ObserveRequest records latency for route and, for failures, the error kind.
func (m *MetricsManager) ObserveRequest(route, errKind string, elapsed time.Duration) {
	m.APIRequestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
	if errKind != "" {
		m.APIErrorsTotal.WithLabelValues(route, errKind).Inc()
	}
}

// NewMetricsServer returns an HTTP server exposing /metrics for registry.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer blocks serving /metrics until the server stops.
func StartMetricsServer(srv *http.Server, appLogger *logger.Logger) error {
	appLogger.Info("Prometheus metrics server starting", zap.String("addr", srv.Addr), zap.String("path", "/metrics"))
	return srv.ListenAndServe()
}
