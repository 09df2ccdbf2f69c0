// Package obsmetrics exposes the simulation's internal counters and
// histograms as Prometheus metrics.
package obsmetrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter/histogram this engine exports, registered
// against its own Registry so a host application can run several
// simulations in the same process without their metrics colliding.
type Metrics struct {
	registry *prometheus.Registry

	EventsProcessed  prometheus.Counter
	TimersCancelled  prometheus.Counter
	QueueDepth       prometheus.Gauge
	NicBytesSent     *prometheus.CounterVec
	EventLatency     prometheus.Histogram
}

// New creates a Metrics set and registers it against a fresh Registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		EventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dscale_sim_events_processed_total",
			Help: "Total number of events delivered by the scheduler.",
		}),
		TimersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dscale_sim_timers_cancelled_total",
			Help: "Total number of timers cancelled before they fired.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dscale_sim_event_queue_depth",
			Help: "Number of events currently pending in the event queue.",
		}),
		NicBytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dscale_sim_nic_bytes_sent_total",
			Help: "Total bytes charged against each process's NIC.",
		}, []string{"process_id"}),
		EventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dscale_sim_event_latency_jiffies",
			Help:    "Distribution of message arrival latency, in jiffies.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}

	reg.MustRegister(m.EventsProcessed, m.TimersCancelled, m.QueueDepth, m.NicBytesSent, m.EventLatency)
	return m
}

// Registry returns the Prometheus registry the metrics were registered
// against, for embedding in a larger process's own /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Server serves this Metrics set's /metrics endpoint on addr until ctx is
// cancelled. It is intended to run for the duration of a single simulation
// run, started by the CLI when --metrics-addr is set.
func (m *Metrics) Server(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("obsmetrics: server failed: %w", err)
		}
		return nil
	}
}
