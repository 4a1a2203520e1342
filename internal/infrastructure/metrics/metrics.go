package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veg_market/internal/domain/market"
)

// Metrics bundles the market counters on a private registry so tests
// can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	OrdersPlaced   prometheus.Counter
	OrdersRejected *prometheus.CounterVec
	CatalogSize    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "veg_market_orders_placed_total",
			Help: "Orders accepted and appended to the history.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veg_market_orders_rejected_total",
			Help: "Orders rejected during validation, by reason.",
		}, []string{"reason"}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "veg_market_catalog_size",
			Help: "Number of vegetables currently in the catalog.",
		}),
	}
	reg.MustRegister(m.OrdersPlaced, m.OrdersRejected, m.CatalogSize)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRejection counts a failed order under its error kind.
func (m *Metrics) ObserveRejection(err error) {
	m.OrdersRejected.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, market.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, market.ErrNotFound):
		return "not_found"
	case errors.Is(err, market.ErrInvalidValue):
		return "invalid_value"
	default:
		return "other"
	}
}
