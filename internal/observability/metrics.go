package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	proxyQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sales_kpi",
		Subsystem: "proxy",
		Name:      "queries_total",
		Help:      "Consultas enviadas ao proxy de banco, por tipo e resultado.",
	}, []string{"kind", "outcome"})
	proxyQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sales_kpi",
		Subsystem: "proxy",
		Name:      "query_duration_seconds",
		Help:      "Latência das consultas ao proxy de banco.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})
	planSelections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sales_kpi",
		Subsystem: "analytics",
		Name:      "plan_selections_total",
		Help:      "Planos de consulta escolhidos a partir das capacidades sondadas.",
	}, []string{"plan"})
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sales_kpi",
		Subsystem: "analytics",
		Name:      "cache_lookups_total",
		Help:      "Consultas aos caches de capacidades e de resultados.",
	}, []string{"layer", "result"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sales_kpi",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latência das requisições HTTP por método e classe de status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
	httpPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sales_kpi",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Panics recuperados pelo middleware HTTP.",
	})
)

func init() {
	prometheus.MustRegister(proxyQueries, proxyQueryDuration, planSelections, cacheLookups, httpRequestDuration, httpPanics)
}

// ObserveProxyQuery registra uma chamada ao proxy
func ObserveProxyQuery(kind, outcome string, elapsed time.Duration) {
	proxyQueries.WithLabelValues(kind, outcome).Inc()
	proxyQueryDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func RecordPlanSelection(plan string) {
	planSelections.WithLabelValues(plan).Inc()
}

// RecordCacheLookup registra hit/miss; layer é "capabilities" ou "results"
func RecordCacheLookup(layer, result string) {
	cacheLookups.WithLabelValues(layer, result).Inc()
}

// ObserveHTTPRequest agrupa o status por classe (2xx, 4xx...) para limitar a cardinalidade
func ObserveHTTPRequest(method string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, statusClass(status)).Observe(elapsed.Seconds())
}

func RecordPanic() {
	httpPanics.Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
