// Package metrics expone contadores Prometheus del inventario y de la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/merch-stock/internal/application/inventory"
)

const namespace = "merch_stock"

var _ inventory.Recorder = (*Metrics)(nil)

// Metrics agrupa los collectors registrados en un registry propio.
type Metrics struct {
	registry        *prometheus.Registry
	movements       *prometheus.CounterVec
	units           *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New crea y registra los collectors (más los de proceso y runtime de Go).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos de stock registrados por tipo.",
		}, []string{"kind"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Unidades movidas por tipo.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consume_rejected_total",
			Help:      "Salidas rechazadas por motivo.",
		}, []string{"reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.movements, m.units, m.rejected, m.requests, m.requestDuration,
	)
	return m
}

// StockMoved cuenta un movimiento aplicado.
func (m *Metrics) StockMoved(kind string, qty int) {
	m.movements.WithLabelValues(kind).Inc()
	m.units.WithLabelValues(kind).Add(float64(qty))
}

// ConsumeRejected cuenta una salida rechazada.
func (m *Metrics) ConsumeRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// ObserveHTTP registra una petición ya respondida. route es el patrón, no la URL concreta.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler sirve el registry en formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry expone el registry (tests y collectors adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
