package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shenikar/station_dashboard/internal/models"
)

const namespace = "station_dashboard"

// Metrics - метрики сессии станции в собственном реестре.
// Реализует service.Observer и alerting.Notifier.
type Metrics struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	alertsRaised  prometheus.Counter
	alertsCleared *prometheus.CounterVec
	alertedNow    prometheus.Gauge
	reconnects    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_events_total",
			Help:      "Hub events applied to the session, by event type.",
		}, []string{"event"}),
		alertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Incidents that entered the alert state.",
		}),
		alertsCleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_cleared_total",
			Help:      "Alerts cleared, by reason.",
		}, []string{"reason"}),
		alertedNow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerted_incidents",
			Help:      "Incidents currently in the alert state.",
		}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_connect_attempts_total",
			Help:      "Hub connection attempts, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.events,
		m.alertsRaised,
		m.alertsCleared,
		m.alertedNow,
		m.reconnects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// EventReceived считает применённые события хаба
func (m *Metrics) EventReceived(name string) {
	m.events.WithLabelValues(name).Inc()
}

// ReconnectAttempt считает попытки подключения к хабу
func (m *Metrics) ReconnectAttempt(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.reconnects.WithLabelValues(result).Inc()
}

// Notify обновляет счётчики оповещений
func (m *Metrics) Notify(event models.AlertEvent) {
	switch event.Type {
	case models.AlertRaised:
		m.alertsRaised.Inc()
		m.alertedNow.Inc()
	case models.AlertCleared:
		m.alertsCleared.WithLabelValues(event.Reason).Inc()
		m.alertedNow.Dec()
	}
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
