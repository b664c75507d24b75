package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Cache lookup results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds all portal metrics
type Metrics struct {
	// Store metrics
	StoreInserts  *prometheus.CounterVec
	StoreEntities *prometheus.GaugeVec

	// Session metrics
	LoginAttempts  *prometheus.CounterVec
	Registrations  *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	// Form metrics
	FormRejections *prometheus.CounterVec

	// Dashboard metrics
	DashboardCache *prometheus.CounterVec
}

// NewMetrics creates the portal metrics and registers them on reg. A nil
// reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StoreInserts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_inserts_total",
			Help:      "Total number of records appended to the domain store",
		}, []string{"collection"}),
		StoreEntities: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_entities",
			Help:      "Current number of records held per collection",
		}, []string{"collection"}),

		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registrations_total",
			Help:      "Total number of registrations by role",
		}, []string{"role"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Number of sessions currently authenticated",
		}),

		FormRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "form_rejections_total",
			Help:      "Total number of form submissions rejected before reaching the store",
		}, []string{"form"}),

		DashboardCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard summary cache lookups by result",
		}, []string{"result"}),
	}
}

// Discard returns metrics bound to no registry, for tests and defaults.
func Discard() *Metrics {
	return NewMetrics(nil, "portal", "")
}

func (m *Metrics) ObserveInsert(collection string, size int) {
	if m == nil {
		return
	}
	m.StoreInserts.WithLabelValues(collection).Inc()
	m.StoreEntities.WithLabelValues(collection).Set(float64(size))
}

func (m *Metrics) ObserveLogin(ok bool) {
	if m == nil {
		return
	}
	outcome := LoginFailure
	if ok {
		outcome = LoginSuccess
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRegistration(role string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(role).Inc()
}

func (m *Metrics) ObserveRejection(form string) {
	if m == nil {
		return
	}
	m.FormRejections.WithLabelValues(form).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.DashboardCache.WithLabelValues(result).Inc()
}
