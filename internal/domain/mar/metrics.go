package mar

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts administration activity.
type Metrics struct {
	dosesAdministered *prometheus.CounterVec
	ordersCompleted   prometheus.Counter
}

// NewMetrics registers the MAR collectors with reg. A nil reg returns
// unregistered collectors, which is what tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dosesAdministered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careconnect_mar_doses_administered_total",
			Help: "Dose slots marked given or cleared.",
		}, []string{"given"}),
		ordersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careconnect_mar_orders_completed_total",
			Help: "Medication orders whose last pending dose was given.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.dosesAdministered, m.ordersCompleted)
	}
	return m
}

func (m *Metrics) observe(given, completed bool) {
	if m == nil {
		return
	}
	label := "false"
	if given {
		label = "true"
	}
	m.dosesAdministered.WithLabelValues(label).Inc()
	if completed {
		m.ordersCompleted.Inc()
	}
}
