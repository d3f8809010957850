package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shenikar/station_dashboard/internal/alerting"
	"github.com/shenikar/station_dashboard/internal/events"
	"github.com/shenikar/station_dashboard/internal/hub"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/store"
	"github.com/shenikar/station_dashboard/internal/supervisor"
	"github.com/sirupsen/logrus"
)

// Методы хаба, которые вызывает панель
const (
	MethodJoinDashboard      = "JoinDashboard"
	MethodJoinIncidentGroup  = "JoinIncidentGroup"
	MethodLeaveIncidentGroup = "LeaveIncidentGroup"
	MethodSubscribe          = "Subscribe"
)

const (
	DefaultSnapshotTimeout = 10 * time.Second
	actionQueueSize        = 1024
)

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrNotAlerted       = errors.New("incident is not alerted")
	ErrHistoryDisabled  = errors.New("alert history is disabled")
	ErrSessionClosed    = errors.New("dashboard session is closed")
	ErrAlreadyRunning   = errors.New("dashboard session is already running")
)

//go:generate mockgen -source=dashboard.go -destination=mocks/mock_dashboard.go -package=mocks

// SnapshotRepository загружает полные снимки с сервера диспетчерской
type SnapshotRepository interface {
	FetchIncidents(ctx context.Context) ([]*models.Incident, error)
	FetchUnits(ctx context.Context) ([]*models.Unit, error)
}

// AlertLogRepository хранит историю переходов оповещений
type AlertLogRepository interface {
	Save(ctx context.Context, event models.AlertEvent) error
	List(ctx context.Context, limit int) ([]models.AlertEvent, error)
}

// Observer получает сведения о работе сессии для метрик
type Observer interface {
	EventReceived(name string)
	ReconnectAttempt(err error)
}

// DashboardService определяет контракт панели станции для HTTP-слоя
type DashboardService interface {
	Incidents(ctx context.Context, displayableOnly bool) ([]*models.Incident, error)
	Incident(ctx context.Context, id models.IncidentID) (*models.Incident, error)
	Alerts(ctx context.Context) ([]models.AlertedIncident, error)
	DismissAlert(ctx context.Context, id models.IncidentID) error
	AlertHistory(ctx context.Context, limit int) ([]models.AlertEvent, error)
	Units(ctx context.Context, station string) ([]*models.Unit, error)
	UnitsToAlert(ctx context.Context) ([]string, error)
	Status(ctx context.Context) (Status, error)
	Resync(ctx context.Context) error
}

// Settings - параметры сессии станции
type Settings struct {
	Station              string
	AlertTimeout         time.Duration
	AlertForAllIncidents bool
	SubscribeGroups      []string
	SnapshotTimeout      time.Duration
	ReconnectBackoff     time.Duration
}

// Deps - внешние зависимости сессии. History, Notifier и Observer могут быть nil.
type Deps struct {
	Gateway   hub.Gateway
	Snapshots SnapshotRepository
	History   AlertLogRepository
	Notifier  alerting.Notifier
	Observer  Observer
}

// Status - состояние подключения и загрузки
type Status struct {
	Station      string     `json:"station"`
	Connection   string     `json:"connection"`
	Connected    bool       `json:"connected"`
	Loading      bool       `json:"loading"`
	LastError    string     `json:"last_error,omitempty"`
	LastLoadedAt *time.Time `json:"last_loaded_at,omitempty"`
	Incidents    int        `json:"incidents"`
	Units        int        `json:"units"`
	Alerts       int        `json:"alerts"`
}

// Dashboard - сессия панели станции. Все изменения хранилищ и движка оповещений
// выполняются в одной горутине цикла событий.
type Dashboard struct {
	settings  Settings
	gateway   hub.Gateway
	snapshots SnapshotRepository
	history   AlertLogRepository
	observer  Observer
	logger    *logrus.Logger

	incidents  *store.IncidentStore
	units      *store.UnitStore
	engine     *alerting.Engine
	supervisor *supervisor.Supervisor

	actions chan func()
	stopped chan struct{}
	running atomic.Bool
	ctx     context.Context

	unsubscribe  []func()
	loading      bool
	lastError    string
	lastLoadedAt *time.Time
}

// NewDashboard создает сессию панели станции
func NewDashboard(settings Settings, deps Deps, logger *logrus.Logger) *Dashboard {
	if settings.SnapshotTimeout <= 0 {
		settings.SnapshotTimeout = DefaultSnapshotTimeout
	}

	d := &Dashboard{
		settings:  settings,
		gateway:   deps.Gateway,
		snapshots: deps.Snapshots,
		history:   deps.History,
		observer:  deps.Observer,
		logger:    logger,
		incidents: store.NewIncidentStore(logger),
		units:     store.NewUnitStore(logger),
		actions:   make(chan func(), actionQueueSize),
		stopped:   make(chan struct{}),
		ctx:       context.Background(),
	}
	d.engine = alerting.NewEngine(alerting.Settings{
		Station:              settings.Station,
		AlertTimeout:         settings.AlertTimeout,
		AlertForAllIncidents: settings.AlertForAllIncidents,
	}, d.incidents, deps.Notifier, logger)

	var observer supervisor.Observer
	if deps.Observer != nil {
		observer = deps.Observer
	}
	d.supervisor = supervisor.New(deps.Gateway, d.Load, settings.ReconnectBackoff, observer, logger)
	return d
}

func (d *Dashboard) log(method string) *logrus.Entry {
	return d.logger.WithFields(logrus.Fields{
		"service": "dashboard",
		"method":  method,
	})
}

// Run подписывается на события хаба, запускает цепочку подключения и обрабатывает
// действия до отмены ctx. При выходе отписывается, снимает таймер эскалации и закрывает соединение.
func (d *Dashboard) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	log := d.log("Run")
	d.ctx = ctx

	d.subscribe()

	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		if err := d.supervisor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Warn("Supervisor exited")
		}
	}()

	log.WithField("station", d.settings.Station).Info("Dashboard session started")
	d.loop(ctx)

	for _, unsubscribe := range d.unsubscribe {
		unsubscribe()
	}
	d.unsubscribe = nil
	d.engine.Stop()
	close(d.stopped)

	<-supervisorDone
	if err := d.gateway.Stop(); err != nil {
		log.WithError(err).Warn("Failed to stop hub connection")
	}

	log.Info("Dashboard session stopped")
	return nil
}

func (d *Dashboard) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.actions:
			fn()
		}
	}
}

// subscribe регистрирует обработчики всех входящих методов и потери соединения
func (d *Dashboard) subscribe() {
	for _, target := range events.Targets {
		d.unsubscribe = append(d.unsubscribe, d.gateway.On(target, func(args []json.RawMessage) {
			d.receive(target, args)
		}))
	}
	d.unsubscribe = append(d.unsubscribe, d.gateway.OnClose(d.disconnected))
}

// receive нормализует сообщение в горутине транспорта и ставит его в очередь цикла
func (d *Dashboard) receive(target string, args []json.RawMessage) {
	ev, err := events.Normalize(target, args)
	if err != nil {
		d.log("receive").WithError(err).WithField("target", target).Warn("Dropping hub message")
		return
	}
	d.post(func() { d.apply(ev) })
}

func (d *Dashboard) disconnected(err error) {
	d.post(func() { d.apply(events.Disconnected{Err: err}) })
}

// post ставит действие в очередь цикла событий
func (d *Dashboard) post(fn func()) {
	select {
	case d.actions <- fn:
	case <-d.stopped:
	}
}

// exec выполняет fn в цикле событий и ждёт завершения
func (d *Dashboard) exec(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	action := func() {
		fn()
		close(done)
	}

	select {
	case d.actions <- action:
	case <-d.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-d.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply применяет каноническое событие к хранилищам и движку оповещений
func (d *Dashboard) apply(ev events.Event) {
	log := d.log("apply").WithField("event", ev.Name())
	if d.observer != nil {
		d.observer.EventReceived(ev.Name())
	}

	switch e := ev.(type) {
	case events.IncidentAdded:
		d.incidents.AddOrReplace(e.Incident)
		d.engine.Dispatch(e.Incident)
		d.joinGroup(e.Incident.ID)

	case events.IncidentUpdated:
		if err := d.incidents.PatchField(e.IncidentID, e.Field, e.Value); err != nil {
			log.WithError(err).WithField("field", e.Field).Warn("Failed to patch incident field")
		}

	case events.IncidentRemoved:
		if d.incidents.Remove(e.IncidentID) {
			d.leaveGroup(e.IncidentID)
		}

	case events.IncidentsRemoved:
		for _, id := range e.IncidentIDs {
			if d.incidents.Remove(id) {
				d.leaveGroup(id)
			}
		}

	case events.IncidentUnitUpdated:
		appended, err := d.incidents.UpsertUnit(e.IncidentID, e.RadioName, e.Fields)
		if err != nil {
			log.WithError(err).Warn("Failed to upsert incident unit")
		}
		if appended {
			if inc, ok := d.incidents.Get(e.IncidentID); ok {
				d.engine.Dispatch(inc)
			}
		}
		for _, u := range e.UnitFields() {
			if !store.UnitFieldKnown(u.Field) {
				continue
			}
			d.applyUnit(u)
		}

	case events.IncidentCommentAdded:
		d.incidents.UpsertComment(e.IncidentID, e.Comment)

	case events.UnitUpdated:
		d.applyUnit(e)

	case events.GroupMessage:
		log.WithFields(logrus.Fields{"group": e.Group, "user": e.User}).Info(e.Message)

	case events.Disconnected:
		if e.Err != nil {
			d.lastError = e.Err.Error()
		}
		log.WithError(e.Err).Warn("Hub connection lost, scheduling reconnect")
		d.supervisor.Reconnect()
	}
}

func (d *Dashboard) applyUnit(e events.UnitUpdated) {
	changed, err := d.units.Upsert(e.RadioName, e.Field, e.Value)
	if err != nil {
		d.log("applyUnit").WithError(err).WithFields(logrus.Fields{
			"radio_name": e.RadioName,
			"field":      e.Field,
		}).Warn("Failed to update unit")
		return
	}
	if changed {
		d.recomputeUnitsToAlert()
	}
}

func (d *Dashboard) recomputeUnitsToAlert() {
	units := d.units.UnitsForStation(d.settings.Station)
	d.engine.SetUnitsToAlert(units)
	d.log("recomputeUnitsToAlert").WithField("units", units).Debug("Units to alert recomputed")
}

func (d *Dashboard) joinGroup(id models.IncidentID) {
	if err := d.gateway.Send(d.ctx, MethodJoinIncidentGroup, id); err != nil {
		d.log("joinGroup").WithError(err).WithField("incident_id", id).Warn("Failed to join incident group")
	}
}

func (d *Dashboard) leaveGroup(id models.IncidentID) {
	if err := d.gateway.Send(d.ctx, MethodLeaveIncidentGroup, id); err != nil {
		d.log("leaveGroup").WithError(err).WithField("incident_id", id).Warn("Failed to leave incident group")
	}
}

// Load - начальная загрузка после подключения: вход в группу панели, подписки,
// снимки инцидентов и подразделений, запуск таймера эскалации.
func (d *Dashboard) Load(ctx context.Context) error {
	log := d.log("Load")
	log.Info("Starting initial load")

	if err := d.exec(ctx, func() { d.loading = true }); err != nil {
		return err
	}

	if err := d.gateway.Invoke(ctx, MethodJoinDashboard); err != nil {
		d.fail(ctx, err)
		return fmt.Errorf("service: could not join dashboard: %w", err)
	}

	for _, group := range d.settings.SubscribeGroups {
		if err := d.gateway.Invoke(ctx, MethodSubscribe, group); err != nil {
			log.WithError(err).WithField("group", group).Warn("Failed to subscribe to group")
		}
	}

	if err := d.resync(ctx, true); err != nil {
		d.fail(ctx, err)
		return err
	}

	var ids []models.IncidentID
	err := d.exec(ctx, func() {
		d.engine.Start(d.post)
		d.loading = false
		d.lastError = ""
		for _, inc := range d.incidents.All() {
			ids = append(ids, inc.ID)
		}
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		d.joinGroup(id)
	}

	log.WithField("incidents", len(ids)).Info("Initial load completed")
	return nil
}

func (d *Dashboard) fail(ctx context.Context, err error) {
	_ = d.exec(ctx, func() {
		d.loading = false
		d.lastError = err.Error()
	})
}

// Resync загружает оба снимка и заменяет ими локальное состояние.
// Оценивает оповещения только для новых инцидентов и новых назначений,
// снятые оповещения повторно не поднимаются.
func (d *Dashboard) Resync(ctx context.Context) error {
	return d.resync(ctx, false)
}

// resync применяет снимки. Реестр применяется первым, чтобы оценка
// оповещений видела состав станции. dispatchAll оценивает каждый инцидент.
func (d *Dashboard) resync(ctx context.Context, dispatchAll bool) error {
	log := d.log("Resync")

	fetchCtx, cancel := context.WithTimeout(ctx, d.settings.SnapshotTimeout)
	defer cancel()

	incidents, err := d.snapshots.FetchIncidents(fetchCtx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch incidents snapshot")
		return fmt.Errorf("service: could not load incidents: %w", err)
	}
	units, err := d.snapshots.FetchUnits(fetchCtx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch units snapshot")
		return fmt.Errorf("service: could not load units: %w", err)
	}

	// Сервер отдаёт старые первыми, панель показывает новые сверху
	reversed := make([]*models.Incident, len(incidents))
	for i, inc := range incidents {
		reversed[len(incidents)-1-i] = inc
	}

	return d.exec(ctx, func() {
		d.units.ReplaceAll(units)
		d.recomputeUnitsToAlert()

		known := make(map[models.IncidentID]map[string]struct{})
		if !dispatchAll {
			for _, inc := range d.incidents.All() {
				known[inc.ID] = assignedRadioNames(inc)
			}
		}

		d.incidents.ReplaceAll(reversed)
		for _, inc := range d.incidents.All() {
			if dispatchAll || gainedAssignment(known, inc) {
				d.engine.Dispatch(inc)
			}
		}

		now := time.Now()
		d.lastLoadedAt = &now
		log.WithFields(logrus.Fields{
			"incidents": d.incidents.Len(),
			"units":     len(units),
		}).Info("Snapshots loaded")
	})
}

func assignedRadioNames(inc *models.Incident) map[string]struct{} {
	names := make(map[string]struct{}, len(inc.UnitsAssigned))
	for _, a := range inc.UnitsAssigned {
		names[a.RadioName] = struct{}{}
	}
	return names
}

// gainedAssignment - инцидент новый для хранилища или получил новое назначение
func gainedAssignment(known map[models.IncidentID]map[string]struct{}, inc *models.Incident) bool {
	names, ok := known[inc.ID]
	if !ok {
		return true
	}
	for _, a := range inc.UnitsAssigned {
		if _, seen := names[a.RadioName]; !seen {
			return true
		}
	}
	return false
}

// Incidents возвращает копии инцидентов в порядке отображения
func (d *Dashboard) Incidents(ctx context.Context, displayableOnly bool) ([]*models.Incident, error) {
	var out []*models.Incident
	err := d.exec(ctx, func() {
		list := d.incidents.All()
		if displayableOnly {
			list = d.incidents.FilterDisplayable()
		}
		out = make([]*models.Incident, 0, len(list))
		for _, inc := range list {
			out = append(out, inc.Clone())
		}
	})
	return out, err
}

// Incident возвращает копию инцидента
func (d *Dashboard) Incident(ctx context.Context, id models.IncidentID) (*models.Incident, error) {
	var out *models.Incident
	err := d.exec(ctx, func() {
		if inc, ok := d.incidents.Get(id); ok {
			out = inc.Clone()
		}
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrIncidentNotFound
	}
	return out, nil
}

// Alerts возвращает оповещённые инциденты со счётчиками
func (d *Dashboard) Alerts(ctx context.Context) ([]models.AlertedIncident, error) {
	var out []models.AlertedIncident
	err := d.exec(ctx, func() {
		out = d.engine.Alerts()
		for i := range out {
			out[i].Incident = out[i].Incident.Clone()
		}
	})
	return out, err
}

// DismissAlert снимает оповещение по команде оператора
func (d *Dashboard) DismissAlert(ctx context.Context, id models.IncidentID) error {
	var ok bool
	if err := d.exec(ctx, func() { ok = d.engine.Unalert(id, models.ReasonDismissed) }); err != nil {
		return err
	}
	if !ok {
		return ErrNotAlerted
	}
	return nil
}

// AlertHistory возвращает последние записи журнала оповещений
func (d *Dashboard) AlertHistory(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	if d.history == nil {
		return nil, ErrHistoryDisabled
	}
	list, err := d.history.List(ctx, limit)
	if err != nil {
		d.log("AlertHistory").WithError(err).Error("Failed to list alert history")
		return nil, fmt.Errorf("service: could not list alert history: %w", err)
	}
	return list, nil
}

// Units возвращает копии подразделений, при непустом station - только этой станции
func (d *Dashboard) Units(ctx context.Context, station string) ([]*models.Unit, error) {
	var out []*models.Unit
	err := d.exec(ctx, func() {
		all := d.units.All()
		out = make([]*models.Unit, 0, len(all))
		for _, u := range all {
			if station != "" && u.CurrentStation != station {
				continue
			}
			out = append(out, u.Clone())
		}
	})
	return out, err
}

// UnitsToAlert возвращает подразделения станции, по которым поднимаются оповещения
func (d *Dashboard) UnitsToAlert(ctx context.Context) ([]string, error) {
	var out []string
	err := d.exec(ctx, func() { out = d.engine.UnitsToAlert() })
	return out, err
}

// Status возвращает состояние сессии
func (d *Dashboard) Status(ctx context.Context) (Status, error) {
	var st Status
	err := d.exec(ctx, func() {
		state := d.gateway.State()
		st = Status{
			Station:      d.settings.Station,
			Connection:   state.String(),
			Connected:    state == hub.StateConnected,
			Loading:      d.loading,
			LastError:    d.lastError,
			LastLoadedAt: d.lastLoadedAt,
			Incidents:    d.incidents.Len(),
			Units:        len(d.units.All()),
			Alerts:       d.engine.Len(),
		}
	})
	return st, err
}
