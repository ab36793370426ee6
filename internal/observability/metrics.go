package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer      prometheus.Gatherer
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	authzDecision *prometheus.CounterVec
	rsvps         *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	broadcasts    *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers collectors against reg. A nil reg uses the default registry once.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
		})
		return defaultMetrics
	}
	return buildMetrics(reg, reg)
}

func buildMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_management_http_requests_total",
			Help: "HTTP requests partitioned by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_management_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authzDecision: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_management_authz_decisions_total",
			Help: "Authorization decisions partitioned by capability and result.",
		}, []string{"capability", "result"}),
		rsvps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_management_rsvps_total",
			Help: "RSVP attempts partitioned by result.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_management_identity_cache_lookups_total",
			Help: "Identity cache lookups partitioned by hit or miss.",
		}, []string{"result"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_management_notification_broadcasts_total",
			Help: "Notification broadcasts partitioned by result.",
		}, []string{"result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_management_jobs_total",
			Help: "Background job executions partitioned by job and status.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_management_job_duration_seconds",
			Help:    "Background job duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	registerer.MustRegister(
		m.httpRequests, m.httpDuration, m.authzDecision, m.rsvps,
		m.cacheLookups, m.broadcasts, m.jobRuns, m.jobDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordAuthz(capability string, allowed bool) {
	if m == nil {
		return
	}
	m.authzDecision.WithLabelValues(capability, resultLabel(allowed, "allow", "deny")).Inc()
}

// RecordRSVP takes one of "accepted", "denied", "not_found" or "error".
func (m *Metrics) RecordRSVP(result string) {
	if m == nil {
		return
	}
	m.rsvps.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(resultLabel(hit, "hit", "miss")).Inc()
}

func (m *Metrics) RecordBroadcast(err error) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(resultLabel(err == nil, "success", "failure")).Inc()
}

// Tracker times a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the run and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	t.metrics.jobRuns.WithLabelValues(t.job, resultLabel(err == nil, "success", "failure")).Inc()
	t.metrics.jobDuration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
