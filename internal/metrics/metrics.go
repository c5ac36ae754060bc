package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "contentkit"

	backendRequestsTotal   = "backend_requests_total"
	backendRequestDuration = "backend_request_duration_seconds"
	pollResultsTotal       = "poll_results_total"
	jobsFinishedTotal      = "jobs_finished_total"
	activePollers          = "active_pollers"

	// Labels
	serviceLabel = "service"
	methodLabel  = "method"
	codeLabel    = "code"
	flowLabel    = "flow"
	resultLabel  = "result"
	outcomeLabel = "outcome"
)

// Poll results
const (
	PollApplied = "applied"
	PollStale   = "stale"
	PollError   = "error"
)

var backendRequestsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      backendRequestsTotal,
		Help:      "Requests sent to the backend partitioned by service, method and status code.",
	},
	[]string{serviceLabel, methodLabel, codeLabel},
)

var backendLatencyMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      backendRequestDuration,
		Help:      "Backend request latency partitioned by service and method.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	},
	[]string{serviceLabel, methodLabel},
)

var pollResultsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      pollResultsTotal,
		Help:      "Status poll responses partitioned by flow and result (applied, stale, error).",
	},
	[]string{flowLabel, resultLabel},
)

var jobsFinishedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      jobsFinishedTotal,
		Help:      "Polled jobs that ended, partitioned by flow and outcome.",
	},
	[]string{flowLabel, outcomeLabel},
)

var activePollersMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      activePollers,
		Help:      "Jobs currently being polled, per flow.",
	},
	[]string{flowLabel},
)

// ObserveBackendRequest records one backend round trip. A zero code means
// no response was obtained.
func ObserveBackendRequest(service, method string, code int, elapsed time.Duration) {
	backendRequestsMetric.With(prometheus.Labels{
		serviceLabel: service,
		methodLabel:  method,
		codeLabel:    codeString(code),
	}).Inc()
	backendLatencyMetric.With(prometheus.Labels{
		serviceLabel: service,
		methodLabel:  method,
	}).Observe(elapsed.Seconds())
}

func IncPollResult(flow, result string) {
	pollResultsMetric.With(prometheus.Labels{flowLabel: flow, resultLabel: result}).Inc()
}

func IncJobFinished(flow, outcome string) {
	jobsFinishedMetric.With(prometheus.Labels{flowLabel: flow, outcomeLabel: outcome}).Inc()
}

func PollerStarted(flow string) {
	activePollersMetric.With(prometheus.Labels{flowLabel: flow}).Inc()
}

func PollerStopped(flow string) {
	activePollersMetric.With(prometheus.Labels{flowLabel: flow}).Dec()
}

func codeString(code int) string {
	if code == 0 {
		return "none"
	}
	return strconv.Itoa(code)
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(backendRequestsMetric)
	prometheus.MustRegister(backendLatencyMetric)
	prometheus.MustRegister(pollResultsMetric)
	prometheus.MustRegister(jobsFinishedMetric)
	prometheus.MustRegister(activePollersMetric)
}
