package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	compiles  *prometheus.CounterVec
	calls     *prometheus.CounterVec
	cached    prometheus.Gauge
	evictions prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gridc_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		compiles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gridc_server_compiles_total",
			Help: "Compilations requested over HTTP by result.",
		}, []string{"result"}),
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gridc_server_calls_total",
			Help: "Function calls requested over HTTP by result.",
		}, []string{"result"}),
		cached: f.NewGauge(prometheus.GaugeOpts{
			Name: "gridc_cached_functions",
			Help: "Compiled functions held in the cache.",
		}),
		evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "gridc_cache_evictions_total",
			Help: "Compiled functions released by the cache.",
		}),
	}
}
