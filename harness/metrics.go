package harness

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "orderloop"

// Metrics exposes the counters of one run on a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry
	labels   prometheus.Labels

	ordersReceived  prometheus.Counter
	ordersProcessed prometheus.Counter
	ordersRested    prometheus.Counter
	tradesExecuted  prometheus.Counter
	tradeVolume     prometheus.Counter
}

// NewMetrics creates the run metrics. Every series carries the run id and
// instrument as constant labels.
func NewMetrics(runID, instrument string) *Metrics {
	labels := prometheus.Labels{"run": runID, "instrument": instrument}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		labels:   labels,

		ordersReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "orders_received_total",
			Help:        "Total number of orders handed to the matching engine",
			ConstLabels: labels,
		}),
		ordersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "orders_processed_total",
			Help:        "Total number of rest and trade events",
			ConstLabels: labels,
		}),
		ordersRested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "orders_rested_total",
			Help:        "Total number of orders that rested on a ledger",
			ConstLabels: labels,
		}),
		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "trades_executed_total",
			Help:        "Total number of trades executed",
			ConstLabels: labels,
		}),
		tradeVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "trade_quantity_total",
			Help:        "Total quantity traded",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		m.ordersReceived,
		m.ordersProcessed,
		m.ordersRested,
		m.tradesExecuted,
		m.tradeVolume,
	)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterGauge exposes a value sampled at scrape time.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        name,
		Help:        help,
		ConstLabels: m.labels,
	}, fn))
}

// RegisterCounter exposes a monotonic counter owned by another component.
func (m *Metrics) RegisterCounter(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   metricsNamespace,
		Name:        name,
		Help:        help,
		ConstLabels: m.labels,
	}, fn))
}

func (m *Metrics) RecordReceived() {
	m.ordersReceived.Inc()
}

func (m *Metrics) RecordRested() {
	m.ordersProcessed.Inc()
	m.ordersRested.Inc()
}

func (m *Metrics) RecordTrade(quantity uint64) {
	m.ordersProcessed.Inc()
	m.tradesExecuted.Inc()
	m.tradeVolume.Add(float64(quantity))
}

// Handler returns the /metrics handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts the metrics endpoint on addr and returns once it is listening.
// The server stops when ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics available", "endpoint", "http://"+ln.Addr().String()+"/metrics")
	return ln.Addr(), nil
}
