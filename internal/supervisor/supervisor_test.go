package supervisor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/station_dashboard/internal/hub"
	"github.com/shenikar/station_dashboard/internal/hub/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingObserver struct {
	mu       sync.Mutex
	attempts []error
}

func (o *recordingObserver) ReconnectAttempt(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, err)
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.attempts)
}

type fixture struct {
	gateway  *mocks.MockGateway
	state    atomic.Int32
	loads    atomic.Int32
	failures atomic.Int32
	observer *recordingObserver
	sup      *Supervisor

	// duringLoad вызывается внутри загрузки с её порядковым номером
	duringLoad func(n int32)
}

// newFixture - шлюз-мок, состояние которого переключается успешным Start.
func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{gateway: mocks.NewMockGateway(ctrl), observer: &recordingObserver{}}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	f.gateway.EXPECT().State().DoAndReturn(func() hub.State { return hub.State(f.state.Load()) }).AnyTimes()

	onConnected := func(ctx context.Context) error {
		n := f.loads.Add(1)
		if f.duringLoad != nil {
			f.duringLoad(n)
		}
		if f.failures.Add(-1) >= 0 {
			return errors.New("snapshot rejected")
		}
		return nil
	}
	f.sup = New(f.gateway, onConnected, 10*time.Millisecond, f.observer, logger)
	return f
}

func (f *fixture) run(t *testing.T) (context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		done <- f.sup.Run(ctx)
		close(finished)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})
	return cancel, done
}

func TestRun_ConnectsAndLoadsOnce(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().Start(gomock.Any()).DoAndReturn(func(context.Context) error {
		f.state.Store(int32(hub.StateConnected))
		return nil
	}).Times(1)

	cancel, done := f.run(t)

	assert.Eventually(t, func() bool { return f.loads.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, f.sup.Running())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, f.sup.Running())
	assert.Equal(t, 1, f.observer.count())
}

func TestRun_RetriesFailedStartWithBackoff(t *testing.T) {
	f := newFixture(t)
	dialErr := errors.New("dial tcp: connection refused")

	gomock.InOrder(
		f.gateway.EXPECT().Start(gomock.Any()).Return(dialErr).Times(2),
		f.gateway.EXPECT().Start(gomock.Any()).DoAndReturn(func(context.Context) error {
			f.state.Store(int32(hub.StateConnected))
			return nil
		}).Times(1),
	)

	f.run(t)

	assert.Eventually(t, func() bool { return f.loads.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 3, f.observer.count())
	assert.ErrorIs(t, f.observer.attempts[0], dialErr)
	assert.NoError(t, f.observer.attempts[2])
}

func TestRun_RetriesFailedInitialLoad(t *testing.T) {
	f := newFixture(t)
	f.state.Store(int32(hub.StateConnected))
	f.failures.Store(1)

	f.gateway.EXPECT().Start(gomock.Any()).Times(0)

	f.run(t)

	assert.Eventually(t, func() bool { return f.loads.Load() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return f.loads.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestReconnect_ReestablishesAfterDrop(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().Start(gomock.Any()).DoAndReturn(func(context.Context) error {
		f.state.Store(int32(hub.StateConnected))
		return nil
	}).Times(2)

	f.run(t)
	require.Eventually(t, func() bool { return f.loads.Load() == 1 }, time.Second, time.Millisecond)

	// Соединение потеряно
	f.state.Store(int32(hub.StateDisconnected))
	f.sup.Reconnect()

	assert.Eventually(t, func() bool { return f.loads.Load() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, hub.StateConnected, hub.State(f.state.Load()))
}

func TestReconnect_Coalesces(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	f.state.Store(int32(hub.StateConnected))
	f.run(t)
	require.Eventually(t, func() bool { return f.loads.Load() == 1 }, time.Second, time.Millisecond)

	// Действие
	f.sup.Reconnect()
	f.sup.Reconnect()
	f.sup.Reconnect()

	// Проверки
	assert.Eventually(t, func() bool { return f.loads.Load() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return f.loads.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestReconnect_DuringLoadServedByThatLoad(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	f.state.Store(int32(hub.StateConnected))
	f.duringLoad = func(n int32) {
		if n == 1 {
			f.sup.Reconnect()
		}
	}

	// Ожидания
	f.gateway.EXPECT().Start(gomock.Any()).Times(0)

	// Действие
	f.run(t)

	// Проверки
	assert.Eventually(t, func() bool { return f.loads.Load() == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return f.loads.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestReconnect_DropDuringLoadReconnects(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	f.state.Store(int32(hub.StateConnected))
	f.duringLoad = func(n int32) {
		if n == 1 {
			// Соединение потеряно, пока шла загрузка
			f.state.Store(int32(hub.StateDisconnected))
			f.sup.Reconnect()
		}
	}

	// Ожидания
	f.gateway.EXPECT().Start(gomock.Any()).DoAndReturn(func(context.Context) error {
		f.state.Store(int32(hub.StateConnected))
		return nil
	}).Times(1)

	// Действие
	f.run(t)

	// Проверки
	assert.Eventually(t, func() bool { return f.loads.Load() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return f.loads.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestRun_SecondRunRejected(t *testing.T) {
	f := newFixture(t)
	f.state.Store(int32(hub.StateConnected))

	f.run(t)
	require.Eventually(t, f.sup.Running, time.Second, time.Millisecond)

	err := f.sup.Run(context.Background())

	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestRun_StopsDuringBackoff(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().Start(gomock.Any()).Return(errors.New("refused")).MinTimes(1)

	cancel, done := f.run(t)
	require.Eventually(t, func() bool { return f.observer.count() >= 1 }, time.Second, time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.Equal(t, int32(0), f.loads.Load())
}
