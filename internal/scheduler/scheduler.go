package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Resyncer перезагружает снимки инцидентов и подразделений
type Resyncer interface {
	Resync(ctx context.Context) error
}

// Scheduler - периодическая перезагрузка снимков по расписанию cron
type Scheduler struct {
	cron     *cron.Cron
	resyncer Resyncer
	schedule string
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewScheduler создает планировщик. Задания не регистрируются до Start.
func NewScheduler(resyncer Resyncer, schedule string, timeout time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		resyncer: resyncer,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start регистрирует задание перезагрузки и запускает cron
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.resync); err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Snapshot resync scheduler started")
	return nil
}

// Stop останавливает cron и ждёт завершения текущего задания
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Snapshot resync scheduler stopped")
}

func (s *Scheduler) resync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := s.logger.WithFields(logrus.Fields{
		"service": "scheduler",
		"method":  "resync",
	})
	log.Debug("Running scheduled snapshot resync")

	if err := s.resyncer.Resync(ctx); err != nil {
		log.WithError(err).Warn("Scheduled snapshot resync failed")
		return
	}
	log.Info("Scheduled snapshot resync completed")
}
