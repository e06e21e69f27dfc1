package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics exposes counters/histograms for the webhook flows.
type AppointmentMetrics struct {
	operationsTotal *prometheus.CounterVec
	externalLatency *prometheus.HistogramVec
	smsTotal        *prometheus.CounterVec
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "operations_total",
			Help:      "Total appointment operations by outcome",
		}, []string{"operation", "status"}),
		externalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "external_call_seconds",
			Help:      "Latency of calendar/sheet/SMS calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dependency"}),
		smsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "sms_total",
			Help:      "Total SMS confirmation attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.externalLatency, m.smsTotal)
	return m
}

func (m *AppointmentMetrics) ObserveOperation(operation, status string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *AppointmentMetrics) ObserveExternal(dependency string, seconds float64) {
	if m == nil {
		return
	}
	m.externalLatency.WithLabelValues(dependency).Observe(seconds)
}

func (m *AppointmentMetrics) ObserveSMS(status string) {
	if m == nil {
		return
	}
	m.smsTotal.WithLabelValues(status).Inc()
}
