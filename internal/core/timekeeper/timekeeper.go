package timekeeper

import (
	"sync"
	"time"

	"hightense/internal/core/model"

	"go.uber.org/zap"
)

// TickSource produces the periodic tick channel and a release function.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Ticks        TickSource
	Now          func() time.Time
	Store        StateStore
	Logger       *zap.Logger
}

// TimeKeeper is a state machine that counts a focus session down.
type TimeKeeper struct {
	mu       sync.Mutex
	config   model.SessionConfig
	options  Config
	logger   *zap.Logger
	state    State
	session  Session
	task     model.Task
	hasTask  bool
	watchers []RemainingWatcher
	events   []chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	closed   bool
}

// New creates a TimeKeeper with the provided configuration.
func New(config model.SessionConfig, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Ticks == nil {
		options.Ticks = tickerSource
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	keeper := &TimeKeeper{
		config:  config.Normalized(),
		options: options,
		logger:  logger.Named("timekeeper"),
		state:   StateIdle,
	}
	keeper.resetSessionLocked()
	return keeper
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		close(ch)
		return ch
	}
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Watch registers a watcher called after every remaining-time change.
func (keeper *TimeKeeper) Watch(watcher RemainingWatcher) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.watchers = append(keeper.watchers, watcher)
}

// State returns the current mode.
func (keeper *TimeKeeper) State() State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// Session returns a copy of the current session.
func (keeper *TimeKeeper) Session() Session {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.session
}

// Remaining returns the remaining session time.
func (keeper *TimeKeeper) Remaining() time.Duration {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.session.Remaining
}

// Task returns the task bound to the session, if any.
func (keeper *TimeKeeper) Task() (model.Task, bool) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.task, keeper.hasTask
}

// Bind attaches a task to an idle or paused session.
func (keeper *TimeKeeper) Bind(task model.Task) bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.state == StateRunning || keeper.state == StateComplete {
		return false
	}
	keeper.task = task
	keeper.hasTask = true
	keeper.session.TaskID = task.ID
	return true
}

// Start launches the ticking loop. Calling it after Pause resumes the session.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed || keeper.state == StateRunning || keeper.state == StateComplete {
		return
	}
	keeper.startLocked(keeper.options.Now())
}

// Resume is Start after a Pause.
func (keeper *TimeKeeper) Resume() {
	keeper.Start()
}

// Pause freezes the countdown and persists the session.
func (keeper *TimeKeeper) Pause() {
	keeper.mu.Lock()
	if keeper.state != StateRunning {
		keeper.mu.Unlock()
		return
	}
	now := keeper.options.Now()
	keeper.state = StatePaused
	keeper.session.Running = false
	done := keeper.haltLocked()
	keeper.persistLocked(now)
	keeper.emitLocked(Event{
		Type:      EventStateChange,
		State:     StatePaused,
		Remaining: keeper.session.Remaining,
		Progress:  keeper.session.Progress(),
		TaskID:    keeper.session.TaskID,
		At:        now,
	})
	keeper.mu.Unlock()

	waitFor(done)
}

// Suspend stops ticking for an application shutdown while recording the
// session as running, so Restore can catch up on the time spent away.
func (keeper *TimeKeeper) Suspend() {
	keeper.mu.Lock()
	if keeper.state != StateRunning {
		keeper.mu.Unlock()
		return
	}
	now := keeper.options.Now()
	done := keeper.haltLocked()
	keeper.persistLocked(now)
	keeper.state = StatePaused
	keeper.session.Running = false
	keeper.mu.Unlock()

	waitFor(done)
}

// Tick advances the countdown by one second. The ticking loop calls it once
// per interval; it is exported for deterministic drivers.
func (keeper *TimeKeeper) Tick() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.tickLocked()
}

// Increase adds one adjustment step to an idle session.
func (keeper *TimeKeeper) Increase() time.Duration {
	return keeper.adjust(keeper.config.AdjustStep)
}

// Decrease removes one adjustment step from an idle session.
func (keeper *TimeKeeper) Decrease() time.Duration {
	return keeper.adjust(-keeper.config.AdjustStep)
}

// Restore rebuilds the session from the state store at launch.
func (keeper *TimeKeeper) Restore() State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed || keeper.state == StateRunning {
		return keeper.state
	}
	now := keeper.options.Now()

	snapshot, ok := keeper.loadLocked(now)
	if !ok {
		keeper.state = StateIdle
		keeper.resetSessionLocked()
		return keeper.state
	}

	remaining := RestoredRemaining(snapshot, now)
	keeper.logger.Debug("restored session",
		zap.Duration("saved", snapshot.Remaining),
		zap.Duration("remaining", remaining),
		zap.Bool("running", snapshot.Running))

	switch {
	case remaining > 0 && snapshot.Running:
		keeper.session = Session{Remaining: remaining, Original: snapshot.Remaining, SavedExitTime: snapshot.SavedExitTime, TaskID: keeper.session.TaskID}
		keeper.startLocked(now)
	case remaining > 0:
		keeper.session = Session{Remaining: remaining, Original: snapshot.Remaining, SavedExitTime: snapshot.SavedExitTime, TaskID: keeper.session.TaskID}
		keeper.state = StatePaused
	case snapshot.Running:
		keeper.session = Session{Original: snapshot.Remaining, SavedExitTime: snapshot.SavedExitTime, TaskID: keeper.session.TaskID}
		keeper.completeLocked(now)
	default:
		keeper.state = StateIdle
		keeper.resetSessionLocked()
	}
	return keeper.state
}

// Reset starts a new idle session with the default duration. The bound task is kept.
func (keeper *TimeKeeper) Reset() {
	keeper.mu.Lock()
	done := keeper.haltLocked()
	keeper.state = StateIdle
	taskID := keeper.session.TaskID
	keeper.resetSessionLocked()
	keeper.session.TaskID = taskID
	keeper.emitStateLocked(keeper.options.Now())
	keeper.mu.Unlock()

	waitFor(done)
}

// Exit leaves the active task view: the countdown stops, persisted state is
// cleared and the session returns to the default duration without a task.
func (keeper *TimeKeeper) Exit() {
	keeper.mu.Lock()
	done := keeper.haltLocked()
	keeper.state = StateIdle
	keeper.task = model.Task{}
	keeper.hasTask = false
	keeper.resetSessionLocked()
	if keeper.options.Store != nil {
		if err := keeper.options.Store.Clear(); err != nil {
			keeper.reportStoreErrorLocked("clear session state", err, keeper.options.Now())
		}
	}
	keeper.emitStateLocked(keeper.options.Now())
	keeper.mu.Unlock()

	waitFor(done)
}

// SetConfig replaces session settings. An idle session picks up the new default duration.
func (keeper *TimeKeeper) SetConfig(config model.SessionConfig) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.config = config.Normalized()
	if keeper.state == StateIdle {
		taskID := keeper.session.TaskID
		keeper.resetSessionLocked()
		keeper.session.TaskID = taskID
	}
}

// Close terminates the ticking loop and closes observers.
func (keeper *TimeKeeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.closed = true
	done := keeper.haltLocked()
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	waitFor(done)
	for _, ch := range events {
		close(ch)
	}
}

func (keeper *TimeKeeper) run(ticks <-chan time.Time, release func(), stop, done chan struct{}) {
	defer close(done)
	defer release()

	for {
		select {
		case <-stop:
			return
		case <-ticks:
			keeper.mu.Lock()
			// A tick racing a Pause must not touch the next run.
			if keeper.stopCh == stop {
				keeper.tickLocked()
			}
			keeper.mu.Unlock()
		}
	}
}

func (keeper *TimeKeeper) startLocked(now time.Time) {
	keeper.state = StateRunning
	keeper.session.Running = true
	keeper.session.ResumedAt = now
	if keeper.session.StartTime.IsZero() {
		keeper.session.StartTime = now
	}
	if keeper.session.Original <= 0 {
		keeper.session.Original = keeper.session.Remaining
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	keeper.stopCh = stop
	keeper.doneCh = done
	ticks, release := keeper.options.Ticks(keeper.options.TickInterval)
	go keeper.run(ticks, release, stop, done)

	keeper.logger.Debug("session running",
		zap.String("task", keeper.session.TaskID),
		zap.Duration("remaining", keeper.session.Remaining))
	keeper.emitStateLocked(now)
}

func (keeper *TimeKeeper) tickLocked() {
	if keeper.state != StateRunning {
		return
	}
	now := keeper.options.Now()

	if keeper.session.Remaining > 0 {
		step := time.Second
		if keeper.session.Remaining < step {
			step = keeper.session.Remaining
		}
		keeper.session.Remaining -= step
		keeper.notifyLocked()
		keeper.emitLocked(Event{
			Type:      EventProgress,
			State:     keeper.state,
			Remaining: keeper.session.Remaining,
			Progress:  keeper.session.Progress(),
			TaskID:    keeper.session.TaskID,
			At:        now,
		})
	}

	if keeper.session.Remaining <= 0 {
		keeper.completeLocked(now)
	}
}

func (keeper *TimeKeeper) completeLocked(now time.Time) {
	keeper.haltLocked()
	keeper.state = StateComplete
	keeper.session.Running = false
	keeper.session.Remaining = 0
	keeper.persistLocked(now)

	keeper.logger.Info("session complete", zap.String("task", keeper.session.TaskID))
	keeper.emitLocked(Event{
		Type:     EventComplete,
		State:    StateComplete,
		Progress: 1,
		TaskID:   keeper.session.TaskID,
		At:       now,
	})
}

func (keeper *TimeKeeper) adjust(delta time.Duration) time.Duration {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.state != StateIdle {
		return keeper.session.Remaining
	}

	remaining := keeper.session.Remaining + delta
	if remaining < 0 {
		remaining = 0
	}
	if remaining > keeper.config.MaxDuration {
		remaining = keeper.config.MaxDuration
	}
	keeper.session.Remaining = remaining
	keeper.session.Original = remaining

	keeper.emitLocked(Event{
		Type:      EventProgress,
		State:     keeper.state,
		Remaining: remaining,
		TaskID:    keeper.session.TaskID,
		At:        keeper.options.Now(),
	})
	return remaining
}

// haltLocked stops the ticking loop and returns its done channel.
func (keeper *TimeKeeper) haltLocked() <-chan struct{} {
	if keeper.stopCh != nil {
		close(keeper.stopCh)
		keeper.stopCh = nil
	}
	done := keeper.doneCh
	keeper.doneCh = nil
	return done
}

func (keeper *TimeKeeper) resetSessionLocked() {
	keeper.session = Session{
		Remaining: keeper.config.DefaultDuration,
		Original:  keeper.config.DefaultDuration,
	}
}

func (keeper *TimeKeeper) persistLocked(now time.Time) {
	keeper.session.SavedExitTime = now
	if keeper.options.Store == nil {
		return
	}
	snapshot := Snapshot{
		Remaining:     keeper.session.Remaining,
		SavedExitTime: now,
		Running:       keeper.session.Running,
	}
	if err := keeper.options.Store.Save(snapshot); err != nil {
		keeper.reportStoreErrorLocked("save session state", err, now)
	}
}

func (keeper *TimeKeeper) loadLocked(now time.Time) (Snapshot, bool) {
	if keeper.options.Store == nil {
		return Snapshot{}, false
	}
	snapshot, ok, err := keeper.options.Store.Load()
	if err != nil {
		keeper.reportStoreErrorLocked("load session state", err, now)
		return Snapshot{}, false
	}
	return snapshot, ok
}

func (keeper *TimeKeeper) reportStoreErrorLocked(action string, err error, now time.Time) {
	keeper.logger.Warn(action, zap.Error(err))
	keeper.emitLocked(Event{
		Type:    EventStoreError,
		State:   keeper.state,
		TaskID:  keeper.session.TaskID,
		Message: action + ": " + err.Error(),
		At:      now,
	})
}

func (keeper *TimeKeeper) notifyLocked() {
	for _, watcher := range keeper.watchers {
		watcher.RemainingChanged(keeper.session.Remaining)
	}
}

func (keeper *TimeKeeper) emitStateLocked(now time.Time) {
	keeper.emitLocked(Event{
		Type:      EventStateChange,
		State:     keeper.state,
		Remaining: keeper.session.Remaining,
		Progress:  keeper.session.Progress(),
		TaskID:    keeper.session.TaskID,
		At:        now,
	})
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func tickerSource(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

func waitFor(done <-chan struct{}) {
	if done != nil {
		<-done
	}
}
