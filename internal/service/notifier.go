package service

import (
	"context"
	"time"

	"github.com/shenikar/station_dashboard/internal/alerting"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	alertQueueSize   = 256
	alertSinkTimeout = 5 * time.Second
)

// AlertPublisher доставляет переходы оповещений во внешние системы
type AlertPublisher interface {
	Publish(ctx context.Context, event models.AlertEvent) error
}

// AlertFanout раздаёт переходы оповещений. Наблюдатели вызываются сразу,
// публикация и запись в журнал идут в отдельной горутине, чтобы не задерживать цикл событий.
type AlertFanout struct {
	publisher AlertPublisher
	history   AlertLogRepository
	observers []alerting.Notifier
	queue     chan models.AlertEvent
	logger    *logrus.Logger
}

// NewAlertFanout создает раздачу. publisher и history могут быть nil.
func NewAlertFanout(publisher AlertPublisher, history AlertLogRepository, logger *logrus.Logger, observers ...alerting.Notifier) *AlertFanout {
	return &AlertFanout{
		publisher: publisher,
		history:   history,
		observers: observers,
		queue:     make(chan models.AlertEvent, alertQueueSize),
		logger:    logger,
	}
}

// Notify реализует alerting.Notifier
func (f *AlertFanout) Notify(event models.AlertEvent) {
	for _, o := range f.observers {
		o.Notify(event)
	}
	if f.publisher == nil && f.history == nil {
		return
	}

	select {
	case f.queue <- event:
	default:
		f.logger.WithFields(logrus.Fields{
			"service":     "alert_fanout",
			"method":      "Notify",
			"incident_id": event.IncidentID,
			"event":       event.Type,
		}).Warn("Alert queue is full, dropping event")
	}
}

// Run доставляет события из очереди до отмены ctx
func (f *AlertFanout) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-f.queue:
			f.deliver(ctx, event)
		}
	}
}

func (f *AlertFanout) deliver(ctx context.Context, event models.AlertEvent) {
	log := f.logger.WithFields(logrus.Fields{
		"service":     "alert_fanout",
		"method":      "deliver",
		"incident_id": event.IncidentID,
		"event":       event.Type,
	})

	ctx, cancel := context.WithTimeout(ctx, alertSinkTimeout)
	defer cancel()

	if f.history != nil {
		if err := f.history.Save(ctx, event); err != nil {
			log.WithError(err).Error("Failed to save alert event")
		}
	}
	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).Error("Failed to publish alert event")
		}
	}
}
