package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modhost"

// Execution outcomes used as the status label.
const (
	StatusOK        = "ok"
	StatusLoadError = "load_error"
	StatusExecError = "exec_error"
	StatusCancelled = "cancelled"
)

// Metrics holds all Prometheus metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Execution metrics
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	ExecutionsActive  prometheus.Gauge
	NonZeroExits      *prometheus.CounterVec
	CapturedBytes     *prometheus.CounterVec

	// Artifact metrics
	ArtifactLoads     *prometheus.CounterVec
	ArtifactFallbacks prometheus.Counter
	ArtifactSize      prometheus.Histogram
	BreakerState      *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint
type Snapshot struct {
	Executions    int64   `json:"executions"`
	Failures      int64   `json:"failures"`
	Active        int64   `json:"active"`
	Fallbacks     int64   `json:"fallbacks"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		ExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Module invocations by outcome",
			},
			[]string{"module", "status"},
		),
		ExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Module invocation duration including artifact load",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"module"},
		),
		ExecutionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "executions_active",
				Help:      "Module invocations currently in flight",
			},
		),
		NonZeroExits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nonzero_exits_total",
				Help:      "Invocations whose entry point reported a non-zero exit code",
			},
			[]string{"module"},
		),
		CapturedBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "captured_bytes_total",
				Help:      "Bytes written by modules per output channel",
			},
			[]string{"channel"},
		),

		ArtifactLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_loads_total",
				Help:      "Artifact load attempts by strategy and outcome",
			},
			[]string{"strategy", "status"},
		),
		ArtifactFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_fallbacks_total",
				Help:      "Loads that fell back from streaming to buffered",
			},
		),
		ArtifactSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_size_bytes",
				Help:      "Size of loaded artifacts",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 9),
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "uptime_seconds",
				Help:      "Service uptime in seconds",
			},
		),
	}
}

// Registry exposes the private registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// ExecutionStarted marks an invocation as in flight
func (m *Metrics) ExecutionStarted() {
	if m == nil {
		return
	}
	m.ExecutionsActive.Inc()

	m.mu.Lock()
	m.snapshot.Active++
	m.mu.Unlock()
}

// ExecutionFinished records the outcome of an invocation
func (m *Metrics) ExecutionFinished(module, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ExecutionsActive.Dec()
	m.ExecutionsTotal.WithLabelValues(module, status).Inc()
	m.ExecutionDuration.WithLabelValues(module).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Active--
	m.snapshot.Executions++
	if status != StatusOK {
		m.snapshot.Failures++
	}
	m.mu.Unlock()
}

// RecordExitCode counts non-zero exit codes
func (m *Metrics) RecordExitCode(module string, code int) {
	if m == nil || code == 0 {
		return
	}
	m.NonZeroExits.WithLabelValues(module).Inc()
}

// AddCapturedBytes counts bytes written to a channel
func (m *Metrics) AddCapturedBytes(channel string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CapturedBytes.WithLabelValues(channel).Add(float64(n))
}

// RecordArtifactLoad records one load attempt
func (m *Metrics) RecordArtifactLoad(strategy string, err error, size int) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = "error"
	}
	m.ArtifactLoads.WithLabelValues(strategy, status).Inc()
	if err == nil && size > 0 {
		m.ArtifactSize.Observe(float64(size))
	}
}

// RecordFallback counts a streaming to buffered fallback
func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.ArtifactFallbacks.Inc()

	m.mu.Lock()
	m.snapshot.Fallbacks++
	m.mu.Unlock()
}

// SetBreakerState publishes a breaker state as a number
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments active WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements active WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Snapshot returns the current running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	uptime := time.Since(m.startTime).Seconds()
	m.Uptime.Set(uptime)

	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = uptime
	return s
}
