package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"bistro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor owns the service's Prometheus registry and collectors
type Monitor struct {
	registry  *prometheus.Registry
	startTime time.Time

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ordersPlaced    prometheus.Counter
	orderValue      prometheus.Histogram
	statusChanges   *prometheus.CounterVec
	ordersDeleted   prometheus.Counter
	cartsSynced     prometheus.Counter
	kitchenClients  prometheus.Gauge
}

// NewMonitor creates a monitor with a private registry. Go runtime and
// process collectors are registered alongside the service metrics.
func NewMonitor() *Monitor {
	m := &Monitor{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests handled, by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders accepted at checkout",
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_total_price",
			Help:    "Client supplied order totals",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		}),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_changes_total",
				Help: "Order status updates, by new status",
			},
			[]string{"status"},
		),
		ordersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Orders removed",
		}),
		cartsSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carts_synced_total",
			Help: "Cart replacements received from clients",
		}),
		kitchenClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kitchen_display_clients",
			Help: "Connected kitchen display websockets",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.ordersPlaced,
		m.orderValue,
		m.statusChanges,
		m.ordersDeleted,
		m.cartsSynced,
		m.kitchenClients,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "uptime_seconds",
			Help: "Seconds since the monitor was created",
		}, func() float64 { return time.Since(m.startTime).Seconds() }),
	)
	return m
}

// Registry exposes the underlying registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per matched route
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordOrderPlaced counts a placed order and its total
func (m *Monitor) RecordOrderPlaced(order *models.Order) {
	m.ordersPlaced.Inc()
	m.orderValue.Observe(order.TotalPrice)
}

// RecordStatusChange counts a status update
func (m *Monitor) RecordStatusChange(status models.OrderStatus) {
	m.statusChanges.WithLabelValues(string(status)).Inc()
}

// RecordOrderDeleted counts a removed order
func (m *Monitor) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordCartSync counts a cart replacement
func (m *Monitor) RecordCartSync() {
	m.cartsSynced.Inc()
}

// SetKitchenClients reports the number of connected displays
func (m *Monitor) SetKitchenClients(n int) {
	m.kitchenClients.Set(float64(n))
}
