package timekeeper

import (
	"errors"
	"sync"
	"testing"
	"time"

	"hightense/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(delta)
}

type memoryStore struct {
	mu       sync.Mutex
	snapshot Snapshot
	saved    bool
	saves    int
	err      error
}

func (store *memoryStore) Save(snapshot Snapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return store.err
	}
	store.snapshot = snapshot
	store.saved = true
	store.saves++
	return nil
}

func (store *memoryStore) Load() (Snapshot, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshot, store.saved, store.err
}

func (store *memoryStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.snapshot = Snapshot{}
	store.saved = false
	return store.err
}

// silentTicks never fires, so tests drive the countdown with Tick.
func silentTicks(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

func newTestKeeper(t *testing.T, store StateStore) (*TimeKeeper, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	keeper := New(model.DefaultSessionConfig(), Config{
		Ticks: silentTicks,
		Now:   clock.Now,
		Store: store,
	})
	t.Cleanup(keeper.Close)
	return keeper, clock
}

func TestNewStartsIdleWithDefaultDuration(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)

	assert.Equal(t, StateIdle, keeper.State())
	assert.Equal(t, 1800*time.Second, keeper.Remaining())
}

func TestTickDecrementsByOneSecondWhileRunning(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)
	keeper.Start()

	previous := keeper.Remaining()
	for i := 0; i < 10; i++ {
		keeper.Tick()
		current := keeper.Remaining()
		require.Equal(t, previous-time.Second, current)
		previous = current
	}
	assert.Equal(t, StateRunning, keeper.State())
}

func TestTickIgnoredUnlessRunning(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)

	keeper.Tick()
	assert.Equal(t, 1800*time.Second, keeper.Remaining())

	keeper.Start()
	keeper.Tick()
	keeper.Pause()
	keeper.Tick()
	assert.Equal(t, 1799*time.Second, keeper.Remaining())
}

func TestCountdownCompletesExactlyOnce(t *testing.T) {
	keeper, _ := newTestKeeper(t, &memoryStore{})
	keeper.SetConfig(model.SessionConfig{DefaultDuration: 60 * time.Second})
	require.Equal(t, 60*time.Second, keeper.Remaining())

	events := keeper.Subscribe(128)
	keeper.Start()
	for i := 0; i < 60; i++ {
		keeper.Tick()
	}
	assert.Equal(t, StateComplete, keeper.State())
	assert.Equal(t, time.Duration(0), keeper.Remaining())

	keeper.Tick()
	keeper.Tick()
	keeper.Start()
	assert.Equal(t, StateComplete, keeper.State())
	assert.Equal(t, time.Duration(0), keeper.Remaining())

	completions := 0
	for len(events) > 0 {
		if event := <-events; event.Type == EventComplete {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

func TestCompletionPersistsFinalState(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	keeper.Start()
	for i := 0; i < 1800; i++ {
		keeper.Tick()
	}
	clock.Advance(time.Minute)

	snapshot, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), snapshot.Remaining)
	assert.False(t, snapshot.Running)
}

func TestPauseThenStartKeepsRemaining(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	startedAt := clock.Now()
	keeper.Start()
	keeper.Tick()
	keeper.Tick()
	before := keeper.Remaining()

	keeper.Pause()
	clock.Advance(5 * time.Second)
	keeper.Start()

	assert.Equal(t, before, keeper.Remaining())
	assert.Equal(t, StateRunning, keeper.State())
	session := keeper.Session()
	assert.Equal(t, startedAt, session.StartTime)
	assert.Equal(t, clock.Now(), session.ResumedAt)
}

func TestPausePersistsSnapshot(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	keeper.Start()
	keeper.Tick()
	clock.Advance(5 * time.Second)

	keeper.Pause()
	keeper.Pause()

	snapshot, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1799*time.Second, snapshot.Remaining)
	assert.Equal(t, clock.Now(), snapshot.SavedExitTime)
	assert.False(t, snapshot.Running)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, StatePaused, keeper.State())
}

func TestRestoredRemaining(t *testing.T) {
	exit := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		snapshot Snapshot
		now      time.Time
		want     time.Duration
	}{
		{"no time passed", Snapshot{Remaining: 600 * time.Second, SavedExitTime: exit}, exit, 600 * time.Second},
		{"partial catch up", Snapshot{Remaining: 600 * time.Second, SavedExitTime: exit}, exit.Add(90 * time.Second), 510 * time.Second},
		{"exactly elapsed", Snapshot{Remaining: 600 * time.Second, SavedExitTime: exit}, exit.Add(600 * time.Second), 0},
		{"overshoot clamps", Snapshot{Remaining: 600 * time.Second, SavedExitTime: exit}, exit.Add(time.Hour), 0},
		{"clock went back", Snapshot{Remaining: 600 * time.Second, SavedExitTime: exit}, exit.Add(-time.Hour), 600 * time.Second},
		{"missing exit time", Snapshot{Remaining: 600 * time.Second}, exit, 600 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RestoredRemaining(tc.snapshot, tc.now))
		})
	}
}

func TestRestoreWithoutSnapshotFallsBackToDefault(t *testing.T) {
	keeper, _ := newTestKeeper(t, &memoryStore{})

	assert.Equal(t, StateIdle, keeper.Restore())
	assert.Equal(t, 1800*time.Second, keeper.Remaining())
}

func TestRestoreAutoStartsRunningSession(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	require.NoError(t, store.Save(Snapshot{
		Remaining:     900 * time.Second,
		SavedExitTime: clock.Now(),
		Running:       true,
	}))
	clock.Advance(100 * time.Second)

	assert.Equal(t, StateRunning, keeper.Restore())
	assert.Equal(t, 800*time.Second, keeper.Remaining())
}

func TestRestorePausedSessionStaysPaused(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	require.NoError(t, store.Save(Snapshot{
		Remaining:     900 * time.Second,
		SavedExitTime: clock.Now(),
	}))
	clock.Advance(100 * time.Second)

	assert.Equal(t, StatePaused, keeper.Restore())
	assert.Equal(t, 800*time.Second, keeper.Remaining())
}

func TestRestoreExhaustedRunningSessionCompletes(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	require.NoError(t, store.Save(Snapshot{
		Remaining:     60 * time.Second,
		SavedExitTime: clock.Now(),
		Running:       true,
	}))
	clock.Advance(2 * time.Hour)
	events := keeper.Subscribe(4)

	assert.Equal(t, StateComplete, keeper.Restore())
	assert.Equal(t, time.Duration(0), keeper.Remaining())
	event := <-events
	assert.Equal(t, EventComplete, event.Type)
}

func TestRestoreExhaustedPausedSessionIsIdle(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	require.NoError(t, store.Save(Snapshot{
		Remaining:     60 * time.Second,
		SavedExitTime: clock.Now(),
	}))
	clock.Advance(time.Minute)

	assert.Equal(t, StateIdle, keeper.Restore())
	assert.Equal(t, 1800*time.Second, keeper.Remaining())
}

func TestSubSecondRemainderNeverGoesNegative(t *testing.T) {
	store := &memoryStore{}
	keeper, clock := newTestKeeper(t, store)
	require.NoError(t, store.Save(Snapshot{
		Remaining:     3 * time.Second,
		SavedExitTime: clock.Now(),
		Running:       true,
	}))
	clock.Advance(2500 * time.Millisecond)
	require.Equal(t, StateRunning, keeper.Restore())

	keeper.Tick()
	assert.Equal(t, time.Duration(0), keeper.Remaining())
	assert.Equal(t, StateComplete, keeper.State())
}

func TestSuspendRecordsRunningFlag(t *testing.T) {
	store := &memoryStore{}
	keeper, _ := newTestKeeper(t, store)
	keeper.Start()
	keeper.Tick()

	keeper.Suspend()

	snapshot, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, snapshot.Running)
	assert.Equal(t, 1799*time.Second, snapshot.Remaining)
}

func TestAdjustmentsStayWithinBounds(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)

	for i := 0; i < 400; i++ {
		remaining := keeper.Increase()
		require.LessOrEqual(t, remaining, 86400*time.Second)
	}
	assert.Equal(t, 86400*time.Second, keeper.Remaining())

	for i := 0; i < 400; i++ {
		remaining := keeper.Decrease()
		require.GreaterOrEqual(t, remaining, time.Duration(0))
	}
	assert.Equal(t, time.Duration(0), keeper.Remaining())
}

func TestAdjustmentClampsUnalignedValues(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)
	keeper.SetConfig(model.SessionConfig{DefaultDuration: 100 * time.Second})
	assert.Equal(t, time.Duration(0), keeper.Decrease())

	keeper.SetConfig(model.SessionConfig{DefaultDuration: 86300 * time.Second})
	assert.Equal(t, 86400*time.Second, keeper.Increase())
}

func TestAdjustmentsRejectedOnceStarted(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)
	keeper.Start()

	assert.Equal(t, 1800*time.Second, keeper.Increase())
	keeper.Pause()
	assert.Equal(t, 1800*time.Second, keeper.Decrease())
}

func TestWatcherSeesEveryTickAfterMutation(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)
	var seen []time.Duration
	keeper.Watch(WatcherFunc(func(remaining time.Duration) {
		seen = append(seen, remaining)
	}))

	keeper.Start()
	keeper.Tick()
	keeper.Tick()

	assert.Equal(t, []time.Duration{1799 * time.Second, 1798 * time.Second}, seen)
}

func TestExitClearsStoreAndTask(t *testing.T) {
	store := &memoryStore{}
	keeper, _ := newTestKeeper(t, store)
	require.True(t, keeper.Bind(model.Task{ID: "t1", Name: "Essay"}))
	keeper.Start()
	keeper.Tick()
	keeper.Pause()

	keeper.Exit()

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	_, hasTask := keeper.Task()
	assert.False(t, hasTask)
	assert.Equal(t, StateIdle, keeper.State())
	assert.Equal(t, 1800*time.Second, keeper.Remaining())
}

func TestBindRejectedWhileRunning(t *testing.T) {
	keeper, _ := newTestKeeper(t, nil)
	keeper.Start()

	assert.False(t, keeper.Bind(model.Task{ID: "late"}))
}

func TestStoreErrorsAreReported(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	keeper, _ := newTestKeeper(t, store)
	events := keeper.Subscribe(8)
	keeper.Start()
	<-events

	keeper.Pause()

	var reported bool
	for len(events) > 0 {
		event := <-events
		if event.Type == EventStoreError {
			reported = true
			assert.Contains(t, event.Message, "disk full")
		}
	}
	assert.True(t, reported)
	assert.Equal(t, StatePaused, keeper.State())
}

func TestTickerLoopDrivesCountdown(t *testing.T) {
	ticks := make(chan time.Time)
	keeper := New(model.DefaultSessionConfig(), Config{
		Ticks: func(time.Duration) (<-chan time.Time, func()) {
			return ticks, func() {}
		},
	})
	defer keeper.Close()
	events := keeper.Subscribe(8)

	keeper.Start()
	require.Equal(t, EventStateChange, (<-events).Type)

	ticks <- time.Now()
	event := <-events
	assert.Equal(t, EventProgress, event.Type)
	assert.Equal(t, 1799*time.Second, event.Remaining)

	keeper.Pause()
	select {
	case ticks <- time.Now():
		t.Fatal("tick delivered after pause")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1799*time.Second, keeper.Remaining())
}

func TestCloseClosesSubscribers(t *testing.T) {
	keeper := New(model.DefaultSessionConfig(), Config{Ticks: silentTicks})
	events := keeper.Subscribe(1)
	keeper.Start()
	<-events

	keeper.Close()

	_, open := <-events
	assert.False(t, open)
}
