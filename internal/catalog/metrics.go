package catalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the catalog's domain counters. A nil *Metrics is valid
// and records nothing, which keeps tests and metric-less deployments free
// of registry plumbing.
type Metrics struct {
	ProductsLoaded prometheus.Gauge
	LoadFailures   prometheus.Counter
	Requests       *prometheus.CounterVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		ProductsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products_loaded",
			Help: "Active products held in the in-memory snapshot",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_load_failures_total",
			Help: "Export loads that settled the catalog on an empty snapshot",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Catalog requests by mode",
		}, []string{"mode"}),
	}

	reg.MustRegister(m.ProductsLoaded, m.LoadFailures, m.Requests)
	return m
}

func (m *Metrics) loaded(n int) {
	if m == nil {
		return
	}
	m.ProductsLoaded.Set(float64(n))
}

func (m *Metrics) loadFailed() {
	if m == nil {
		return
	}
	m.LoadFailures.Inc()
}

func (m *Metrics) request(mode string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(mode).Inc()
}
