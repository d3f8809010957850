package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/station_dashboard/internal/events"
	"github.com/shenikar/station_dashboard/internal/hub"
	hubmocks "github.com/shenikar/station_dashboard/internal/hub/mocks"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/service"
	"github.com/shenikar/station_dashboard/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testStation = "Station 9"

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.AlertEvent
}

func (n *recordingNotifier) Notify(event models.AlertEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) ofType(t models.AlertEventType) []models.AlertEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.AlertEvent, 0)
	for _, e := range n.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	incidents    []*models.Incident
	units        []*models.Unit
	joinFailures int
	history      bool
}

type sent struct {
	method string
	id     models.IncidentID
}

type harness struct {
	dash      *service.Dashboard
	gateway   *hubmocks.MockGateway
	snapshots *mocks.MockSnapshotRepository
	history   *mocks.MockAlertLogRepository
	notifier  *recordingNotifier

	mu       sync.Mutex
	handlers map[string]hub.Handler
	onClose  func(error)
	sends    []sent
	loads    atomic.Int32

	// Содержимое снимков, отдаваемое мок-репозиторием
	incidents []*models.Incident
	units     []*models.Unit

	cancel context.CancelFunc
	done   chan error
}

// newHarness - сессия с мок-шлюзом, который запоминает зарегистрированные обработчики.
func newHarness(t *testing.T, fx fixture) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		gateway:   hubmocks.NewMockGateway(ctrl),
		snapshots: mocks.NewMockSnapshotRepository(ctrl),
		history:   mocks.NewMockAlertLogRepository(ctrl),
		notifier:  &recordingNotifier{},
		handlers:  make(map[string]hub.Handler),
		incidents: fx.incidents,
		units:     fx.units,
	}

	h.gateway.EXPECT().On(gomock.Any(), gomock.Any()).DoAndReturn(func(target string, handler hub.Handler) func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.handlers[target] = handler
		return func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.handlers, target)
		}
	}).Times(len(events.Targets))
	h.gateway.EXPECT().OnClose(gomock.Any()).DoAndReturn(func(handler func(error)) func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.onClose = handler
		return func() {}
	}).Times(1)
	h.gateway.EXPECT().State().Return(hub.StateConnected).AnyTimes()
	h.gateway.EXPECT().Stop().Return(nil).Times(1)
	h.gateway.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, method string, args ...any) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			id, _ := args[0].(models.IncidentID)
			h.sends = append(h.sends, sent{method: method, id: id})
			return nil
		}).AnyTimes()
	h.gateway.EXPECT().Invoke(gomock.Any(), service.MethodSubscribe, "Incidents").Return(nil).AnyTimes()

	if fx.joinFailures > 0 {
		gomock.InOrder(
			h.gateway.EXPECT().Invoke(gomock.Any(), service.MethodJoinDashboard).
				Return(errors.New("hub invocation failed: not authorized")).Times(fx.joinFailures),
			h.gateway.EXPECT().Invoke(gomock.Any(), service.MethodJoinDashboard).Return(nil).AnyTimes(),
		)
	} else {
		h.gateway.EXPECT().Invoke(gomock.Any(), service.MethodJoinDashboard).Return(nil).AnyTimes()
	}

	h.snapshots.EXPECT().FetchIncidents(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Incident, error) {
		h.loads.Add(1)
		h.mu.Lock()
		defer h.mu.Unlock()
		out := make([]*models.Incident, 0, len(h.incidents))
		for _, inc := range h.incidents {
			out = append(out, inc.Clone())
		}
		return out, nil
	}).AnyTimes()
	h.snapshots.EXPECT().FetchUnits(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Unit, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		out := make([]*models.Unit, 0, len(h.units))
		for _, u := range h.units {
			out = append(out, u.Clone())
		}
		return out, nil
	}).AnyTimes()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	deps := service.Deps{
		Gateway:   h.gateway,
		Snapshots: h.snapshots,
		Notifier:  h.notifier,
	}
	if fx.history {
		deps.History = h.history
	}

	h.dash = service.NewDashboard(service.Settings{
		Station:          testStation,
		AlertTimeout:     120 * time.Second,
		SubscribeGroups:  []string{"Incidents"},
		ReconnectBackoff: 10 * time.Millisecond,
	}, deps, logger)
	return h
}

// start запускает сессию и ждёт окончания начальной загрузки
func (h *harness) start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan error, 1)
	go func() { h.done <- h.dash.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Error("dashboard did not stop")
		}
	})

	require.Eventually(t, func() bool {
		st, err := h.dash.Status(context.Background())
		return err == nil && !st.Loading && st.LastLoadedAt != nil && st.LastError == ""
	}, 2*time.Second, 5*time.Millisecond)
}

// setSnapshot подменяет снимок инцидентов для следующей загрузки
func (h *harness) setSnapshot(incidents ...*models.Incident) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.incidents = incidents
}

func (h *harness) emit(t *testing.T, target string, args ...string) {
	t.Helper()
	h.mu.Lock()
	handler, ok := h.handlers[target]
	h.mu.Unlock()
	require.True(t, ok, "no handler for %s", target)

	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw[i] = json.RawMessage(a)
	}
	handler(raw)
}

// sent возвращает id, для которых вызывался метод группы
func (h *harness) sent(method string) []models.IncidentID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.IncidentID, 0)
	for _, s := range h.sends {
		if s.method == method {
			out = append(out, s.id)
		}
	}
	return out
}

// sync дожидается обработки всех ранее поставленных событий
func (h *harness) sync(t *testing.T) {
	t.Helper()
	_, err := h.dash.Status(context.Background())
	require.NoError(t, err)
}

func (h *harness) ids(t *testing.T) []models.IncidentID {
	t.Helper()
	list, err := h.dash.Incidents(context.Background(), false)
	require.NoError(t, err)
	out := make([]models.IncidentID, 0, len(list))
	for _, inc := range list {
		out = append(out, inc.ID)
	}
	return out
}

func newIncident(id models.IncidentID, active bool, units ...models.UnitAssignment) *models.Incident {
	number := "F24-" + id.String()
	return &models.Incident{ID: id, MasterIncidentNumber: &number, IsActive: active, UnitsAssigned: units}
}

func onCall(radioName string) models.UnitAssignment {
	return models.UnitAssignment{RadioName: radioName, StartDateTime: models.NewTimestamp(time.Now())}
}

func newUnit(radioName, station string) *models.Unit {
	return &models.Unit{RadioName: radioName, CurrentStation: station, HomeStation: station}
}

func TestDashboard_InitialLoad(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{
		incidents: []*models.Incident{
			newIncident(1, true, onCall("M7")),
			newIncident(2, true, onCall("E1")),
		},
		units: []*models.Unit{newUnit("E1", testStation), newUnit("M7", "Station 3")},
	})

	// Действие
	h.start(t)

	// Проверки
	// Снимок развёрнут: новые сверху
	assert.Equal(t, []models.IncidentID{2, 1}, h.ids(t))

	units, err := h.dash.UnitsToAlert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"E1"}, units)

	alerts, err := h.dash.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.IncidentID(2), alerts[0].Incident.ID)

	st, err := h.dash.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, "connected", st.Connection)
	assert.Equal(t, 2, st.Incidents)
	assert.Equal(t, 2, st.Units)
	assert.Equal(t, 1, st.Alerts)
	assert.Len(t, h.notifier.ofType(models.AlertRaised), 1)
	assert.Eventually(t, func() bool {
		return len(h.sent(service.MethodJoinIncidentGroup)) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDashboard_IncidentAddedRaisesAlertAndJoinsGroup(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{units: []*models.Unit{newUnit("E1", testStation)}})
	h.start(t)
	start := time.Now().UTC().Format(time.RFC3339)

	// Действие
	h.emit(t, events.TargetIncidentAdded, `{"id":5,"masterIncidentNumber":"F24-5","isActive":true,`+
		`"unitsAssigned":[{"radioName":"E1","startDateTime":"`+start+`"}]}`)
	h.sync(t)

	// Проверки
	assert.Equal(t, []models.IncidentID{5}, h.ids(t))
	assert.Equal(t, []models.IncidentID{5}, h.sent(service.MethodJoinIncidentGroup))
	raised := h.notifier.ofType(models.AlertRaised)
	require.Len(t, raised, 1)
	assert.Equal(t, models.IncidentID(5), raised[0].IncidentID)
	assert.Equal(t, testStation, raised[0].Station)
}

func TestDashboard_IncidentAddedForKnownIdReplaces(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true), newIncident(2, true)}})
	h.start(t)

	// Действие
	h.emit(t, events.TargetIncidentAdded, `{"id":1,"masterIncidentNumber":"F24-1","isActive":false,"address":"1 Elm St"}`)
	h.sync(t)

	// Проверки
	assert.Equal(t, []models.IncidentID{2, 1}, h.ids(t))
	inc, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, inc.IsActive)
	assert.Equal(t, "1 Elm St", inc.Address)
}

func TestDashboard_FieldChangedPatchesIncident(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true)}})
	h.start(t)

	// Действие
	h.emit(t, events.TargetIncidentFieldChanged, `"1"`, `"Address"`, `"200 Oak Ave"`)
	h.emit(t, events.TargetIncidentFieldChanged, `1`, `"Nature"`, `"Structure fire"`)
	h.emit(t, events.TargetIncidentFieldChanged, `1`, `"NotAField"`, `"x"`)
	h.emit(t, events.TargetIncidentFieldChanged, `99`, `"address"`, `"nowhere"`)
	h.sync(t)

	// Проверки
	inc, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "200 Oak Ave", inc.Address)
	assert.Equal(t, "Structure fire", inc.Nature)
	assert.Equal(t, []models.IncidentID{1}, h.ids(t))
}

func TestDashboard_IncidentRemovedLeavesGroupAndKeepsAlert(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{
		incidents: []*models.Incident{newIncident(1, true, onCall("E1")), newIncident(2, true), newIncident(3, true)},
		units:     []*models.Unit{newUnit("E1", testStation)},
	})
	h.start(t)

	// Действие
	h.emit(t, events.TargetIncidentRemoved, `1`)
	h.emit(t, events.TargetIncidentRemoved, `1`)
	h.emit(t, events.TargetIncidentsRemoved, `[2, "3", 4]`)
	h.sync(t)

	// Проверки
	assert.Empty(t, h.ids(t))
	assert.Equal(t, []models.IncidentID{1, 2, 3}, h.sent(service.MethodLeaveIncidentGroup))
	_, err := h.dash.Incident(context.Background(), 1)
	assert.ErrorIs(t, err, service.ErrIncidentNotFound)

	// Удаление не снимает оповещение
	alerts, err := h.dash.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.IncidentID(1), alerts[0].Incident.ID)
}

func TestDashboard_NewUnitAssignmentTriggersAlert(t *testing.T) {
	h := newHarness(t, fixture{
		incidents: []*models.Incident{newIncident(1, true, onCall("M7"))},
		units:     []*models.Unit{newUnit("E1", testStation)},
	})
	h.start(t)
	require.Empty(t, h.notifier.ofType(models.AlertRaised))

	start := time.Now().UTC().Format(time.RFC3339)
	h.emit(t, events.TargetIncidentUnitStatusChanged, `1`,
		`{"RadioName":"E1","StatusId":6,"StartDateTime":"`+start+`"}`)
	h.sync(t)

	inc, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, inc.UnitsAssigned, 2)
	assert.Equal(t, "E1", inc.UnitsAssigned[1].RadioName)
	assert.Len(t, h.notifier.ofType(models.AlertRaised), 1)

	// Производное изменение реестра
	units, err := h.dash.Units(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.NotNil(t, units[0].StatusID)
	assert.Equal(t, 6, *units[0].StatusID)
}

func TestDashboard_UnitAssignmentMergeDoesNotRetrigger(t *testing.T) {
	h := newHarness(t, fixture{
		incidents: []*models.Incident{newIncident(1, true, onCall("M7"))},
		units:     []*models.Unit{newUnit("M7", "Station 3")},
	})
	h.start(t)

	// Подразделение переходит на станцию, но назначение уже известно
	h.emit(t, events.TargetIncidentUnitStatusChanged, `1`, `{"radioName":"M7","currentStation":"Station 9"}`)
	h.sync(t)

	units, err := h.dash.UnitsToAlert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"M7"}, units)

	inc, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, inc.UnitsAssigned, 1)
	assert.Empty(t, h.notifier.ofType(models.AlertRaised))
}

func TestDashboard_UnitFieldChangedRecomputesUnitsToAlert(t *testing.T) {
	h := newHarness(t, fixture{units: []*models.Unit{newUnit("E1", testStation), newUnit("T2", "Station 3")}})
	h.start(t)

	h.emit(t, events.TargetUnitFieldChanged, `"T2"`, `"CurrentStation"`, `"Station 9"`)
	h.emit(t, events.TargetUnitFieldChanged, `"E1"`, `"currentStation"`, `"Station 4"`)
	h.emit(t, events.TargetUnitStatusChanged, `"X5"`, `3`)
	h.sync(t)

	units, err := h.dash.UnitsToAlert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, units)

	byStation, err := h.dash.Units(context.Background(), testStation)
	require.NoError(t, err)
	require.Len(t, byStation, 1)
	assert.Equal(t, "T2", byStation[0].RadioName)

	all, err := h.dash.Units(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDashboard_CommentAdded(t *testing.T) {
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true)}})
	h.start(t)

	h.emit(t, events.TargetIncidentCommentAdded, `1`, `{"commentId":10,"text":"first"}`)
	h.emit(t, events.TargetIncidentCommentAdded, `1`, `{"commentId":10,"text":"edited"}`)
	h.sync(t)

	inc, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, inc.Comments, 1)
	assert.Equal(t, "edited", inc.Comments[0].Text)
}

func TestDashboard_MalformedMessageDropped(t *testing.T) {
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true)}})
	h.start(t)

	h.emit(t, events.TargetIncidentRemoved, `"not-a-number"`)
	h.emit(t, events.TargetIncidentFieldChanged, `1`)
	h.sync(t)

	assert.Equal(t, []models.IncidentID{1}, h.ids(t))
}

func TestDashboard_DisplayableFilter(t *testing.T) {
	noNumber := newIncident(2, true, onCall("E1"))
	noNumber.MasterIncidentNumber = nil
	h := newHarness(t, fixture{incidents: []*models.Incident{
		newIncident(1, true, onCall("E1")),
		noNumber,
		newIncident(3, true),
	}})
	h.start(t)

	list, err := h.dash.Incidents(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.IncidentID(1), list[0].ID)
}

func TestDashboard_QueriesReturnCopies(t *testing.T) {
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true)}})
	h.start(t)

	inc, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	inc.Address = "mutated"

	again, err := h.dash.Incident(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", again.Address)
}

func TestDashboard_DismissAlert(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{
		incidents: []*models.Incident{newIncident(1, true, onCall("E1"))},
		units:     []*models.Unit{newUnit("E1", testStation)},
	})
	h.start(t)

	// Действие
	require.NoError(t, h.dash.DismissAlert(context.Background(), 1))
	err := h.dash.DismissAlert(context.Background(), 1)

	// Проверки
	assert.ErrorIs(t, err, service.ErrNotAlerted)
	cleared := h.notifier.ofType(models.AlertCleared)
	require.Len(t, cleared, 1)
	assert.Equal(t, models.ReasonDismissed, cleared[0].Reason)

	alerts, err := h.dash.Alerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDashboard_ResyncKeepsDismissedAlertCleared(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{
		incidents: []*models.Incident{newIncident(1, true, onCall("E1"))},
		units:     []*models.Unit{newUnit("E1", testStation)},
	})
	h.start(t)
	require.NoError(t, h.dash.DismissAlert(context.Background(), 1))

	// Действие
	err := h.dash.Resync(context.Background())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.loads.Load())
	alerts, err := h.dash.Alerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Len(t, h.notifier.ofType(models.AlertRaised), 1)
}

func TestDashboard_ResyncAlertsOnNewIncidentsAndAssignments(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{
		incidents: []*models.Incident{
			newIncident(1, true, onCall("M7")),
			newIncident(2, true, onCall("E1")),
		},
		units: []*models.Unit{newUnit("E1", testStation), newUnit("M7", "Station 3")},
	})
	h.start(t)
	require.Len(t, h.notifier.ofType(models.AlertRaised), 1)
	require.NoError(t, h.dash.DismissAlert(context.Background(), 2))

	// Инцидент 1 получил подразделение станции, инцидент 3 появился,
	// состав инцидента 2 не изменился
	h.setSnapshot(
		newIncident(1, true, onCall("M7"), onCall("E1")),
		newIncident(2, true, onCall("E1")),
		newIncident(3, true, onCall("E1")),
	)

	// Действие
	err := h.dash.Resync(context.Background())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, []models.IncidentID{3, 2, 1}, h.ids(t))

	alerts, err := h.dash.Alerts(context.Background())
	require.NoError(t, err)
	alerted := make([]models.IncidentID, 0, len(alerts))
	for _, a := range alerts {
		alerted = append(alerted, a.Incident.ID)
	}
	assert.ElementsMatch(t, []models.IncidentID{1, 3}, alerted)

	raised := h.notifier.ofType(models.AlertRaised)
	require.Len(t, raised, 3)
	assert.ElementsMatch(t, []models.IncidentID{1, 3}, []models.IncidentID{raised[1].IncidentID, raised[2].IncidentID})
}

func TestDashboard_DisconnectReloads(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true)}})
	h.start(t)
	require.Equal(t, int32(1), h.loads.Load())

	h.mu.Lock()
	onClose := h.onClose
	h.mu.Unlock()
	require.NotNil(t, onClose)

	// Действие
	onClose(errors.New("websocket: close 1006 (abnormal closure)"))

	// Проверки
	assert.Eventually(t, func() bool { return h.loads.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		st, err := h.dash.Status(context.Background())
		return err == nil && st.LastError == "" && !st.Loading
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDashboard_JoinFailureIsRetried(t *testing.T) {
	h := newHarness(t, fixture{incidents: []*models.Incident{newIncident(1, true)}, joinFailures: 2})

	h.start(t)

	assert.Equal(t, int32(1), h.loads.Load())
	assert.Equal(t, []models.IncidentID{1}, h.ids(t))
}

func TestDashboard_AlertHistory(t *testing.T) {
	// Подготовка
	h := newHarness(t, fixture{history: true})
	expected := []models.AlertEvent{{IncidentID: 1, Type: models.AlertRaised}}

	// Ожидания
	h.history.EXPECT().List(gomock.Any(), 20).Return(expected, nil).Times(1)
	h.history.EXPECT().List(gomock.Any(), 5).Return(nil, errors.New("connection refused")).Times(1)
	h.start(t)

	// Действие
	list, err := h.dash.AlertHistory(context.Background(), 20)
	_, failErr := h.dash.AlertHistory(context.Background(), 5)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, list)
	assert.Error(t, failErr)
}

func TestDashboard_AlertHistoryDisabled(t *testing.T) {
	h := newHarness(t, fixture{})
	h.start(t)

	_, err := h.dash.AlertHistory(context.Background(), 10)

	assert.ErrorIs(t, err, service.ErrHistoryDisabled)
}

func TestDashboard_RunTwiceAndClosedSession(t *testing.T) {
	h := newHarness(t, fixture{})
	h.start(t)

	assert.ErrorIs(t, h.dash.Run(context.Background()), service.ErrAlreadyRunning)

	h.cancel()
	require.NoError(t, <-h.done)
	h.done <- nil

	_, err := h.dash.Status(context.Background())
	assert.ErrorIs(t, err, service.ErrSessionClosed)
}
