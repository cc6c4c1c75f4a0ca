package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for party onboarding.
type Metrics struct {
	CreateLatency   *prometheus.HistogramVec
	CreateErrors    *prometheus.CounterVec
	IdempotencyHits prometheus.Counter
	PartiesCreated  prometheus.Counter
}

// New registers the party metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CreateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "party360_create_person_duration_seconds",
			Help:    "Duration of CreatePerson including idempotency handling",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"tenant", "screening", "outcome"}),
		CreateErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "party360_create_person_errors_total",
			Help: "CreatePerson failures by error reason",
		}, []string{"code"}),
		IdempotencyHits: f.NewCounter(prometheus.CounterOpts{
			Name: "party360_create_person_idempotency_hits_total",
			Help: "CreatePerson calls answered from the idempotency cache",
		}),
		PartiesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "party360_parties_created_total",
			Help: "Parties persisted",
		}),
	}
}

// ObserveCreate records a CreatePerson call. Call with time.Now() taken at
// the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time, tenant, screening, outcome string) {
	if m == nil {
		return
	}
	m.CreateLatency.WithLabelValues(tenant, screening, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementError(code string) {
	if m == nil {
		return
	}
	m.CreateErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementIdempotencyHit() {
	if m == nil {
		return
	}
	m.IdempotencyHits.Inc()
}

func (m *Metrics) IncrementPartiesCreated() {
	if m == nil {
		return
	}
	m.PartiesCreated.Inc()
}
