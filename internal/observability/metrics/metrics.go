package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the booking flow.
type ConversationMetrics struct {
	conversationsTotal *prometheus.CounterVec
	turnsTotal         *prometheus.CounterVec
	bookingsTotal      *prometheus.CounterVec
	remindersTotal     *prometheus.CounterVec
	turnLatency        *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		conversationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harborhealth",
			Subsystem: "conversation",
			Name:      "started_total",
			Help:      "Total conversations opened",
		}, []string{"channel"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harborhealth",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed turns by resulting dialogue state",
		}, []string{"state", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harborhealth",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"status"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harborhealth",
			Subsystem: "reminders",
			Name:      "scheduled_total",
			Help:      "Total reminder rows created",
		}, []string{"kind"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "harborhealth",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.conversationsTotal, m.turnsTotal, m.bookingsTotal, m.remindersTotal, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveConversationStarted(channel string) {
	if m == nil {
		return
	}
	m.conversationsTotal.WithLabelValues(channel).Inc()
}

func (m *ConversationMetrics) ObserveTurn(state, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(state, status).Inc()
}

func (m *ConversationMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ConversationMetrics) ObserveReminderScheduled(kind string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(kind).Inc()
}

func (m *ConversationMetrics) ObserveTurnLatency(state string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(state).Observe(seconds)
}
