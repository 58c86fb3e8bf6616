package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contact directory.
// Tracks mutation counts, rejections, directory size and operation latency.
type Metrics struct {
	ContactsAdded     prometheus.Counter
	ContactsDeleted   prometheus.Counter
	ContactsUpdated   prometheus.Counter
	Rejections        *prometheus.CounterVec
	ContactsStored    prometheus.Gauge
	OperationDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with every contact metric registered on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContactsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_added_total",
			Help: "Total number of contacts added to the directory",
		}),
		ContactsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_deleted_total",
			Help: "Total number of contacts removed from the directory",
		}),
		ContactsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_updated_total",
			Help: "Total number of successful contact updates",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_contact_rejections_total",
			Help: "Directory operations rejected, by operation and reason",
		}, []string{"operation", "reason"}),
		ContactsStored: factory.NewGauge(prometheus.GaugeOpts{
			Name: "contactbook_contacts_stored",
			Help: "Number of contacts currently stored",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbook_operation_duration_seconds",
			Help:    "Duration of directory operations",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementAdded() {
	m.ContactsAdded.Inc()
	m.ContactsStored.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.ContactsDeleted.Inc()
	m.ContactsStored.Dec()
}

func (m *Metrics) IncrementUpdated() {
	m.ContactsUpdated.Inc()
}

// IncrementRejected records a rejected operation, e.g. ("add", "conflict").
func (m *Metrics) IncrementRejected(operation, reason string) {
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

// ObserveOperation records the duration of a directory operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
