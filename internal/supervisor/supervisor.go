package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/shenikar/station_dashboard/internal/hub"
	"github.com/sirupsen/logrus"
)

// DefaultBackoff - пауза между попытками подключения
const DefaultBackoff = 5 * time.Second

var ErrAlreadyRunning = errors.New("supervisor is already running")

// Connector - часть шлюза, которой управляет супервизор
type Connector interface {
	State() hub.State
	Start(ctx context.Context) error
}

// Observer получает результат каждой попытки подключения
type Observer interface {
	ReconnectAttempt(err error)
}

// Supervisor держит единственную цепочку повторов подключения.
// После каждого успешного подключения выполняется onConnected (начальная загрузка).
type Supervisor struct {
	gateway     Connector
	onConnected func(ctx context.Context) error
	backoff     time.Duration
	observer    Observer
	logger      *logrus.Logger

	kick  chan struct{}
	armed atomic.Bool
}

// New создает супервизор
func New(gateway Connector, onConnected func(ctx context.Context) error, backoff time.Duration, observer Observer, logger *logrus.Logger) *Supervisor {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Supervisor{
		gateway:     gateway,
		onConnected: onConnected,
		backoff:     backoff,
		observer:    observer,
		logger:      logger,
		kick:        make(chan struct{}, 1),
	}
}

// Run подключается и перезапускает загрузку по каждому Reconnect до отмены ctx
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.armed.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.armed.Store(false)

	log := s.logger.WithFields(logrus.Fields{"service": "supervisor", "method": "Run"})
	log.Info("Supervisor started")

	for {
		if err := s.establish(ctx); err != nil {
			log.Info("Supervisor stopped")
			return err
		}

		// Запрос, пришедший во время загрузки, ею уже обслужен,
		// если соединение не упало снова
		select {
		case <-s.kick:
			if s.gateway.State() != hub.StateConnected {
				log.Info("Reconnect requested during load")
				continue
			}
		default:
		}

		select {
		case <-ctx.Done():
			log.Info("Supervisor stopped")
			return ctx.Err()
		case <-s.kick:
			log.Info("Reconnect requested")
		}
	}
}

// Reconnect просит цепочку восстановить соединение. Повторные запросы схлопываются.
func (s *Supervisor) Reconnect() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Running - запущена ли цепочка повторов
func (s *Supervisor) Running() bool {
	return s.armed.Load()
}

// establish повторяет подключение и начальную загрузку с фиксированной паузой до успеха
func (s *Supervisor) establish(ctx context.Context) error {
	log := s.logger.WithFields(logrus.Fields{"service": "supervisor", "method": "establish"})

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.gateway.State() != hub.StateConnected {
			err := s.gateway.Start(ctx)
			if errors.Is(err, hub.ErrAlreadyStarted) {
				err = nil
			}
			s.observe(err)
			if err != nil {
				log.WithError(err).WithField("attempt", attempt).Warnf("Failed to connect, retrying in %s", s.backoff)
				if !s.wait(ctx) {
					return ctx.Err()
				}
				continue
			}
		}

		if err := s.onConnected(ctx); err != nil {
			log.WithError(err).WithField("attempt", attempt).Warnf("Initial load failed, retrying in %s", s.backoff)
			if !s.wait(ctx) {
				return ctx.Err()
			}
			continue
		}

		log.WithField("attempt", attempt).Info("Connection established")
		return nil
	}
}

func (s *Supervisor) wait(ctx context.Context) bool {
	t := time.NewTimer(s.backoff)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Supervisor) observe(err error) {
	if s.observer != nil {
		s.observer.ReconnectAttempt(err)
	}
}
