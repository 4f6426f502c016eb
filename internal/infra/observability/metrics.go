package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the scheduling backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpDuration        *prometheus.HistogramVec
	operationDuration   *prometheus.HistogramVec
	externalErrors      *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	vacationValidations *prometheus.CounterVec
	bonusReports        prometheus.Counter
	bonusAgentFailures  prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agendamento_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agendamento_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agendamento_backend_errors_total",
				Help: "Total errors from the hosted backend.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agendamento_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agendamento_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		vacationValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agendamento_vacation_validations_total",
				Help: "Vacation start dates checked against the business-day rule.",
			},
			[]string{"result"},
		),
		bonusReports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agendamento_bonus_reports_total",
				Help: "Monthly bonus reports computed.",
			},
		),
		bonusAgentFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agendamento_bonus_agent_failures_total",
				Help: "Agents reported with zero totals because their data could not be loaded.",
			},
		),
	}
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordOperation records the duration of a service operation.
func (m *Metrics) RecordOperation(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the backend error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrVacationValidation counts an accepted or rejected vacation start.
func (m *Metrics) IncrVacationValidation(accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.vacationValidations.WithLabelValues(result).Inc()
}

// IncrBonusReport counts a computed bonus report and its failed agents.
func (m *Metrics) IncrBonusReport(failedAgents int) {
	m.bonusReports.Inc()
	m.bonusAgentFailures.Add(float64(failedAgents))
}

// Summary returns a snapshot for GET /v1/metrics/summary.
func (m *Metrics) Summary() *domain.MetricsSummary {
	hits := counterVecValue(m.cacheHits, "session")
	misses := counterVecValue(m.cacheMisses, "session")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.MetricsSummary{
		BackendErrors:       sumCounterVec(m.externalErrors),
		SessionCacheHitRate: hitRate,
		VacationsAccepted:   counterVecValue(m.vacationValidations, "accepted"),
		VacationsRejected:   counterVecValue(m.vacationValidations, "rejected"),
		BonusReports:        counterValue(m.bonusReports),
	}
}

// counterVecValue extracts the current float64 value from a CounterVec for a given label.
func counterVecValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()
	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err == nil && m.Counter != nil {
			total += m.Counter.GetValue()
		}
	}
	return total
}

// routePattern returns the chi route pattern, or "unmatched" when no route
// matched, so the route label stays bounded.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
