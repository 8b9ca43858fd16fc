package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "player_scout"

// Recorder owns the service's Prometheus collectors. All methods are safe on a nil
// receiver so tests and the CLI can run without metrics.
type Recorder struct {
	registry *prometheus.Registry

	sourceRequests  *prometheus.CounterVec
	sourceLatency   *prometheus.HistogramVec
	sourceRetries   *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
	resolutions     *prometheus.CounterVec
	candidateCount  prometheus.Histogram
	transitions     *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	expiredSessions prometheus.Counter
	aggregations    *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	handlerFaults   prometheus.Counter
}

// New registers every collector on a private registry together with the Go runtime
// and process collectors.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Recorder{
		registry: registry,
		sourceRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "requests_total",
			Help:      "Source calls by source, operation and outcome.",
		}, []string{"source", "operation", "outcome"}),
		sourceLatency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "request_duration_seconds",
			Help:      "Source call latency including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"source", "operation"}),
		sourceRetries: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "retries_total",
			Help:      "Retries issued after transient source failures.",
		}, []string{"source"}),
		breakerState: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "circuit_open",
			Help:      "1 while the source circuit breaker is open or half open.",
		}, []string{"source"}),
		resolutions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Name resolutions by outcome.",
		}, []string{"outcome"}),
		candidateCount: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "candidates",
			Help:      "Candidates returned per resolution.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10},
		}),
		transitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "transitions_total",
			Help:      "Selection flow transitions.",
		}, []string{"from", "input", "to"}),
		activeSessions: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
		expiredSessions: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "expired_sessions_total",
			Help:      "Sessions removed by the idle sweep.",
		}),
		aggregations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "profiles_total",
			Help:      "Profile aggregations by outcome.",
		}, []string{"outcome"}),
		conflicts: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "field_conflicts_total",
			Help:      "Field conflicts recorded during merges.",
		}, []string{"field"}),
		handlerFaults: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "handler_faults_total",
			Help:      "Unexpected faults caught at the message boundary.",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveSourceCall(source, operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.sourceRequests.WithLabelValues(source, operation, outcome).Inc()
	r.sourceLatency.WithLabelValues(source, operation).Observe(elapsed.Seconds())
}

func (r *Recorder) IncSourceRetry(source string) {
	if r == nil {
		return
	}
	r.sourceRetries.WithLabelValues(source).Inc()
}

func (r *Recorder) SetCircuitOpen(source string, open bool) {
	if r == nil {
		return
	}
	value := 0.0
	if open {
		value = 1
	}
	r.breakerState.WithLabelValues(source).Set(value)
}

func (r *Recorder) ObserveResolution(outcome string, candidates int) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(outcome).Inc()
	r.candidateCount.Observe(float64(candidates))
}

func (r *Recorder) IncTransition(from, input, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(from, input, to).Inc()
}

func (r *Recorder) SetActiveSessions(n int) {
	if r == nil {
		return
	}
	r.activeSessions.Set(float64(n))
}

func (r *Recorder) AddExpiredSessions(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.expiredSessions.Add(float64(n))
}

func (r *Recorder) IncAggregation(outcome string) {
	if r == nil {
		return
	}
	r.aggregations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) IncConflict(field string) {
	if r == nil {
		return
	}
	r.conflicts.WithLabelValues(field).Inc()
}

func (r *Recorder) IncHandlerFault() {
	if r == nil {
		return
	}
	r.handlerFaults.Inc()
}
