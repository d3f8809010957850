package alerting

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/pkg/timer"
	"github.com/sirupsen/logrus"
)

// DefaultTickInterval - шаг таймера эскалации
const DefaultTickInterval = time.Second

// Settings - параметры оповещения станции
type Settings struct {
	Station              string
	AlertTimeout         time.Duration
	AlertForAllIncidents bool
	TickInterval         time.Duration
}

// IncidentLookup - доступ к хранилищу инцидентов только на чтение
type IncidentLookup interface {
	Get(id models.IncidentID) (*models.Incident, bool)
}

// Notifier получает переходы состояния оповещений
type Notifier interface {
	Notify(event models.AlertEvent)
}

type alertEntry struct {
	id        models.IncidentID
	incident  *models.Incident
	episodeID uuid.UUID
}

// Engine решает, поднимать ли оповещение по инциденту, и ведёт счётчики эскалации.
// Все методы вызываются из одной горутины владельца.
type Engine struct {
	settings Settings
	lookup   IncidentLookup
	notifier Notifier
	logger   *logrus.Logger
	now      func() time.Time

	unitsToAlert map[string]struct{}
	alerted      []alertEntry
	counters     map[string]int

	ticker *timer.Repeating
}

// NewEngine создает движок оповещений
func NewEngine(settings Settings, lookup IncidentLookup, notifier Notifier, logger *logrus.Logger) *Engine {
	if settings.TickInterval <= 0 {
		settings.TickInterval = DefaultTickInterval
	}
	return &Engine{
		settings:     settings,
		lookup:       lookup,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
		unitsToAlert: make(map[string]struct{}),
		alerted:      make([]alertEntry, 0),
		counters:     make(map[string]int),
	}
}

// timeoutSeconds - окно оповещения в тиках по одной секунде
func (e *Engine) timeoutSeconds() int {
	return int(e.settings.AlertTimeout / time.Second)
}

func (e *Engine) log(method string, id models.IncidentID) *logrus.Entry {
	return e.logger.WithFields(logrus.Fields{
		"service":     "alert_engine",
		"method":      method,
		"incident_id": id,
	})
}

// SetUnitsToAlert заменяет набор подразделений станции
func (e *Engine) SetUnitsToAlert(radioNames []string) {
	set := make(map[string]struct{}, len(radioNames))
	for _, name := range radioNames {
		set[name] = struct{}{}
	}
	e.unitsToAlert = set
}

// UnitsToAlert возвращает подразделения, по которым поднимаются оповещения
func (e *Engine) UnitsToAlert() []string {
	out := make([]string, 0, len(e.unitsToAlert))
	for name := range e.unitsToAlert {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// QualifyingUnits возвращает назначения, которые дают право поднять оповещение:
// подразделение станции (или режим "все инциденты"), ещё на вызове
// и назначено не раньше, чем AlertTimeout назад (граница включительно).
func (e *Engine) QualifyingUnits(inc *models.Incident) []string {
	now := e.now()
	out := make([]string, 0)
	for _, a := range inc.UnitsAssigned {
		if !e.settings.AlertForAllIncidents {
			if _, ok := e.unitsToAlert[a.RadioName]; !ok {
				continue
			}
		}
		if !a.OnCall() {
			continue
		}
		if a.StartDateTime == nil {
			continue
		}
		if now.After(a.StartDateTime.Add(e.settings.AlertTimeout)) {
			continue
		}
		out = append(out, a.RadioName)
	}
	return out
}

// Dispatch поднимает оповещение, если инцидент активен, есть подходящее
// назначение и оповещение ещё не поднято. Возвращает true при переходе.
func (e *Engine) Dispatch(inc *models.Incident) bool {
	if inc == nil {
		return false
	}
	log := e.log("Dispatch", inc.ID)

	if !inc.IsActive {
		log.Debug("Incident is not active, skipping")
		return false
	}

	units := e.QualifyingUnits(inc)
	if len(units) == 0 {
		log.Debug("No qualifying unit assignments")
		return false
	}

	if e.IsAlerted(inc.ID) {
		log.Info("Incident already alerted")
		return false
	}

	entry := alertEntry{id: inc.ID, incident: inc, episodeID: uuid.New()}
	e.alerted = append(e.alerted, entry)
	e.counters[inc.ID.String()] = 0

	log.WithField("units", units).Info("Incident alerted")
	e.notify(models.AlertEvent{
		EpisodeID:      entry.episodeID,
		Type:           models.AlertRaised,
		IncidentID:     inc.ID,
		IncidentNumber: inc.Number(),
		Units:          units,
	})
	return true
}

// Unalert снимает оповещение. Для отсутствующего инцидента - предупреждение и no-op.
func (e *Engine) Unalert(id models.IncidentID, reason string) bool {
	log := e.log("Unalert", id).WithField("reason", reason)

	idx := e.indexOf(id)
	if idx < 0 {
		log.Warn("Attempted to unalert an incident that is not alerted")
		return false
	}

	entry := e.alerted[idx]
	key := id.String()
	elapsed := e.counters[key]

	e.alerted = append(e.alerted[:idx], e.alerted[idx+1:]...)
	delete(e.counters, key)

	log.WithField("elapsed_seconds", elapsed).Info("Incident unalerted")
	e.notify(models.AlertEvent{
		EpisodeID:      entry.episodeID,
		Type:           models.AlertCleared,
		IncidentID:     id,
		IncidentNumber: e.incident(entry).Number(),
		Reason:         reason,
		ElapsedSeconds: elapsed,
	})
	return true
}

// Tick увеличивает все счётчики на секунду и снимает просроченные оповещения
func (e *Engine) Tick() {
	limit := e.timeoutSeconds()
	expired := make([]models.IncidentID, 0)
	for _, entry := range e.alerted {
		key := entry.id.String()
		e.counters[key]++
		if e.counters[key] > limit {
			expired = append(expired, entry.id)
		}
	}
	for _, id := range expired {
		e.Unalert(id, models.ReasonTimeout)
	}
}

// IsAlerted - поднято ли оповещение по инциденту
func (e *Engine) IsAlerted(id models.IncidentID) bool {
	return e.indexOf(id) >= 0
}

// Counter возвращает счётчик секунд с момента оповещения
func (e *Engine) Counter(id models.IncidentID) (int, bool) {
	v, ok := e.counters[id.String()]
	return v, ok
}

// Alerts возвращает оповещённые инциденты в порядке поднятия
func (e *Engine) Alerts() []models.AlertedIncident {
	out := make([]models.AlertedIncident, 0, len(e.alerted))
	for _, entry := range e.alerted {
		out = append(out, models.AlertedIncident{
			Incident:       e.incident(entry),
			ElapsedSeconds: e.counters[entry.id.String()],
		})
	}
	return out
}

// Len - количество поднятых оповещений
func (e *Engine) Len() int {
	return len(e.alerted)
}

// Start взводит единственный таймер эскалации. Каждый тик передаётся в dispatch,
// чтобы выполниться в горутине владельца.
func (e *Engine) Start(dispatch func(func())) {
	if e.ticker == nil {
		e.ticker = timer.NewRepeating(e.settings.TickInterval, func() { dispatch(e.Tick) })
	}
	if e.ticker.Start() {
		e.logger.WithField("service", "alert_engine").Info("Escalation timer started")
	}
}

// Stop снимает таймер эскалации
func (e *Engine) Stop() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	e.logger.WithField("service", "alert_engine").Info("Escalation timer stopped")
}

// Running - взведён ли таймер эскалации
func (e *Engine) Running() bool {
	return e.ticker != nil && e.ticker.Armed()
}

func (e *Engine) indexOf(id models.IncidentID) int {
	for i, entry := range e.alerted {
		if entry.id == id {
			return i
		}
	}
	return -1
}

// incident берёт актуальную запись из хранилища, а если её уже удалили - последнюю известную
func (e *Engine) incident(entry alertEntry) *models.Incident {
	if e.lookup != nil {
		if inc, ok := e.lookup.Get(entry.id); ok {
			return inc
		}
	}
	return entry.incident
}

func (e *Engine) notify(event models.AlertEvent) {
	if e.notifier == nil {
		return
	}
	event.ID = uuid.New()
	event.Station = e.settings.Station
	event.At = e.now()
	e.notifier.Notify(event)
}
