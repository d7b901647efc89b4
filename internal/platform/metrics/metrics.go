package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatch-path instruments. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry bookkeeping.
type Metrics struct {
	DispatchesTotal  prometheus.Counter
	DeliveriesTotal  *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookd_dispatches_total",
			Help: "Dispatch invocations received.",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hookd_deliveries_total",
			Help: "Delivery attempts by outcome.",
		}, []string{"outcome"}),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hookd_delivery_duration_seconds",
			Help:    "Time spent on a single delivery attempt.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.DispatchesTotal, m.DeliveriesTotal, m.DeliveryDuration)
	return m
}

func (m *Metrics) ObserveDispatch() {
	if m == nil {
		return
	}
	m.DispatchesTotal.Inc()
}

func (m *Metrics) ObserveDelivery(success bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.DeliveriesTotal.WithLabelValues(outcome).Inc()
	m.DeliveryDuration.Observe(seconds)
}
