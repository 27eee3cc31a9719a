package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors the dispatcher updates as it
// runs. reg may be nil, in which case the collectors are created but
// never registered with a registry — useful for tests and for callers
// who want to wire them into their own registry by hand afterwards.
type Metrics struct {
	dispatched prometheus.Counter
	scheduled  prometheus.Counter
	replies    prometheus.Counter
	queueDepth prometheus.GaugeFunc
}

// NewMetrics creates the dispatcher's collectors, registering them
// with reg if it is non-nil. sched is sampled on demand by the queue
// depth gauge, so it must outlive the returned Metrics.
func NewMetrics(reg prometheus.Registerer, sched *Schedule) *Metrics {
	m := &Metrics{
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osc",
			Subsystem: "dispatcher",
			Name:      "messages_dispatched_total",
			Help:      "Messages successfully claimed by a registered handler.",
		}),
		scheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osc",
			Subsystem: "dispatcher",
			Name:      "messages_scheduled_total",
			Help:      "Bundle elements enqueued for future dispatch rather than run immediately.",
		}),
		replies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osc",
			Subsystem: "dispatcher",
			Name:      "introspection_replies_total",
			Help:      "Introspection #reply messages sent for unclaimed UDP requests.",
		}),
	}
	m.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "osc",
		Subsystem: "scheduler",
		Name:      "queue_depth",
		Help:      "Number of bundle elements currently waiting for their scheduled timetag.",
	}, func() float64 {
		return float64(sched.Len())
	})

	if reg != nil {
		reg.MustRegister(m.dispatched, m.scheduled, m.replies, m.queueDepth)
	}
	return m
}
