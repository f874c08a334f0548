package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contact module.
type Metrics struct {
	ContactsCreated      prometheus.Counter
	ContactsUpdated      prometheus.Counter
	ContactsDeleted      prometheus.Counter
	ValidationRejections *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
}

// New registers the contact metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContactsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "crm_contacts_created_total",
			Help: "Total number of contacts created",
		}),
		ContactsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "crm_contacts_updated_total",
			Help: "Total number of contact updates applied",
		}),
		ContactsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "crm_contacts_deleted_total",
			Help: "Total number of contacts deleted",
		}),
		ValidationRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_contact_validation_rejections_total",
			Help: "Requests rejected by field validation, by field",
		}, []string{"field"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_contact_operation_duration_seconds",
			Help:    "Duration of contact operations including storage round trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncCreated() {
	m.ContactsCreated.Inc()
}

func (m *Metrics) IncUpdated() {
	m.ContactsUpdated.Inc()
}

func (m *Metrics) IncDeleted() {
	m.ContactsDeleted.Inc()
}

// IncRejected records a validation rejection. field is "" for missing
// required fields.
func (m *Metrics) IncRejected(field string) {
	if field == "" {
		field = "required"
	}
	m.ValidationRejections.WithLabelValues(field).Inc()
}

// ObserveOperation records the duration of op. Call with time.Now() taken at
// the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
