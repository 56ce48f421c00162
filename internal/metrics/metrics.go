// Package metrics registers the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	CheckoutSteps    *prometheus.CounterVec
	OrdersPlaced     prometheus.Counter
	OrdersCancelled  prometheus.Counter
	PaymentsDone     prometheus.Counter
	CartRefreshes    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the storefront API.",
		}, []string{"method", "code"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of storefront API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CheckoutSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkout_transitions_total",
			Help:      "Checkout step transitions by outcome.",
		}, []string{"step", "outcome"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Orders placed through checkout.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled by customers.",
		}),
		PaymentsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "payments_completed_total",
			Help:      "Orders paid from the payment step.",
		}),
		CartRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_refreshes_total",
			Help:      "Cart count refreshes by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CheckoutSteps,
		m.OrdersPlaced,
		m.OrdersCancelled,
		m.PaymentsDone,
		m.CartRefreshes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentTransport wraps next so every upstream call is counted and timed.
// Transport errors are recorded with code "error" and returned untouched.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		m.UpstreamDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

		code := "error"
		if err == nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		m.UpstreamRequests.WithLabelValues(req.Method, code).Inc()
		return resp, err
	})
}

// CheckoutStep records a checkout transition. Safe on a nil receiver so
// services can run without metrics in tests.
func (m *Metrics) CheckoutStep(step, outcome string) {
	if m == nil {
		return
	}
	m.CheckoutSteps.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) OrderPlaced() {
	if m != nil {
		m.OrdersPlaced.Inc()
	}
}

func (m *Metrics) OrderCancelled() {
	if m != nil {
		m.OrdersCancelled.Inc()
	}
}

func (m *Metrics) PaymentCompleted() {
	if m != nil {
		m.PaymentsDone.Inc()
	}
}

func (m *Metrics) CartRefreshed(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "reset"
	}
	m.CartRefreshes.WithLabelValues(outcome).Inc()
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
