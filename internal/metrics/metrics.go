package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigurationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "configurations_created_total",
			Help: "Total email configurations created",
		},
	)

	ConfigurationsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "configurations_deleted_total",
			Help: "Total email configurations deleted",
		},
	)

	PreviewsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "previews_generated_total",
			Help: "Total previews generated",
		},
	)

	PreviewFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preview_failures_total",
			Help: "Total previews that returned a degraded result",
		},
	)

	DatalakeQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datalake_queries_total",
			Help: "Datalake queries by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)
)

func Init() {
	prometheus.MustRegister(ConfigurationsCreated)
	prometheus.MustRegister(ConfigurationsDeleted)
	prometheus.MustRegister(PreviewsGenerated)
	prometheus.MustRegister(PreviewFailures)
	prometheus.MustRegister(DatalakeQueries)
	prometheus.MustRegister(HTTPRequests)
}
