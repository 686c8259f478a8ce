package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

type Registry struct {
	reg *prometheus.Registry

	GatewayRequests *prometheus.CounterVec
	GatewayLatency  *prometheus.HistogramVec

	OrdersEnriched      prometheus.Counter
	EnrichmentFallbacks *prometheus.CounterVec
	EnrichmentLatency   prometheus.Histogram

	RefreshesDiscarded prometheus.Counter
	StatusCommits      *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	gatewayRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendordesk_gateway_requests_total",
		Help: "Backend requests by operation and outcome.",
	}, []string{"operation", "outcome"})
	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendordesk_gateway_request_seconds",
		Help:    "Backend request latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	ordersEnriched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vendordesk_orders_enriched_total",
		Help: "Orders passed through the enrichment aggregator.",
	})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendordesk_enrichment_fallbacks_total",
		Help: "Enriched fields that fell back to their default value.",
	}, []string{"field"})
	enrichLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vendordesk_enrichment_batch_seconds",
		Help:    "Wall time of a whole enrichment batch.",
		Buckets: prometheus.DefBuckets,
	})

	discarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vendordesk_refreshes_discarded_total",
		Help: "Order refreshes dropped because a newer refresh started.",
	})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendordesk_status_commits_total",
		Help: "Order status commits by target status and outcome.",
	}, []string{"status", "outcome"})

	r.MustRegister(gatewayRequests, gatewayLatency, ordersEnriched, fallbacks, enrichLatency, discarded, commits)
	return &Registry{
		reg:                 r,
		GatewayRequests:     gatewayRequests,
		GatewayLatency:      gatewayLatency,
		OrdersEnriched:      ordersEnriched,
		EnrichmentFallbacks: fallbacks,
		EnrichmentLatency:   enrichLatency,
		RefreshesDiscarded:  discarded,
		StatusCommits:       commits,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
