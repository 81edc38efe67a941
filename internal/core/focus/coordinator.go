// Package focus ties a selected task to the session timer and its companion.
package focus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hightense/internal/core/adventure"
	"hightense/internal/core/model"
	"hightense/internal/core/timekeeper"

	"go.uber.org/zap"
)

var (
	// ErrNoTaskSelected indicates an operation needs a selected task.
	ErrNoTaskSelected = errors.New("no task selected")
	// ErrSessionNotComplete indicates the session has not finished yet.
	ErrSessionNotComplete = errors.New("session not complete")
	// ErrSessionActive indicates a running or finished session refused a new task.
	ErrSessionActive = errors.New("session active")
)

// Tasks is the part of the task store the coordinator needs.
type Tasks interface {
	GetTask(ctx context.Context, id string) (model.Task, error)
	SetComplete(ctx context.Context, id string, complete bool) error
}

// Coordinator drives one focus session at a time.
type Coordinator struct {
	mu        sync.Mutex
	keeper    *timekeeper.TimeKeeper
	scheduler *adventure.Scheduler
	tasks     Tasks
	logger    *zap.Logger
	confirmed bool
}

// New wires the scheduler as the keeper's remaining-time watcher.
func New(keeper *timekeeper.TimeKeeper, scheduler *adventure.Scheduler, tasks Tasks, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	keeper.Watch(scheduler)
	return &Coordinator{
		keeper:    keeper,
		scheduler: scheduler,
		tasks:     tasks,
		logger:    logger.Named("focus"),
	}
}

// Keeper returns the session timer.
func (coordinator *Coordinator) Keeper() *timekeeper.TimeKeeper {
	return coordinator.keeper
}

// Scheduler returns the adventure scheduler.
func (coordinator *Coordinator) Scheduler() *adventure.Scheduler {
	return coordinator.scheduler
}

// Restore rebuilds the last session and schedules adventures for what is left.
func (coordinator *Coordinator) Restore() timekeeper.State {
	state := coordinator.keeper.Restore()
	coordinator.scheduler.Setup(coordinator.keeper.Remaining())
	return state
}

// SelectTask binds a task to a fresh session and schedules its adventures.
func (coordinator *Coordinator) SelectTask(ctx context.Context, id string) (model.Task, error) {
	task, err := coordinator.tasks.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("select task: %w", err)
	}

	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	if coordinator.keeper.State() == timekeeper.StateComplete {
		coordinator.keeper.Reset()
	}
	if !coordinator.keeper.Bind(task) {
		return model.Task{}, fmt.Errorf("select task: %w: %s", ErrSessionActive, coordinator.keeper.State())
	}
	coordinator.confirmed = false
	coordinator.scheduler.Setup(coordinator.keeper.Remaining())
	coordinator.logger.Info("task selected", zap.String("task", task.ID), zap.Duration("remaining", coordinator.keeper.Remaining()))
	return task, nil
}

// AdjustDuration moves the idle session length one step up or down.
func (coordinator *Coordinator) AdjustDuration(up bool) time.Duration {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	var remaining time.Duration
	if up {
		remaining = coordinator.keeper.Increase()
	} else {
		remaining = coordinator.keeper.Decrease()
	}
	if _, ok := coordinator.keeper.Task(); ok && coordinator.keeper.State() == timekeeper.StateIdle {
		coordinator.scheduler.Setup(remaining)
	}
	return remaining
}

// ApplyConfig replaces the session settings. An idle session takes the new
// default length, and a bound one gets thresholds for that length.
func (coordinator *Coordinator) ApplyConfig(config model.SessionConfig) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	coordinator.keeper.SetConfig(config)
	if _, ok := coordinator.keeper.Task(); ok && coordinator.keeper.State() == timekeeper.StateIdle {
		coordinator.scheduler.Setup(coordinator.keeper.Remaining())
	}
}

// Toggle starts a stopped session or pauses a running one.
func (coordinator *Coordinator) Toggle() timekeeper.State {
	if coordinator.keeper.State() == timekeeper.StateRunning {
		coordinator.keeper.Pause()
	} else {
		coordinator.keeper.Start()
	}
	return coordinator.keeper.State()
}

// ConfirmComplete marks the selected task complete after a finished session.
// Repeated calls for the same session do not touch the store again.
func (coordinator *Coordinator) ConfirmComplete(ctx context.Context) (model.Task, error) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	task, ok := coordinator.keeper.Task()
	if !ok {
		return model.Task{}, ErrNoTaskSelected
	}
	if coordinator.keeper.State() != timekeeper.StateComplete {
		return model.Task{}, ErrSessionNotComplete
	}
	if coordinator.confirmed {
		task.IsComplete = true
		return task, nil
	}

	if err := coordinator.tasks.SetComplete(ctx, task.ID, true); err != nil {
		return model.Task{}, fmt.Errorf("confirm complete: %w", err)
	}
	coordinator.confirmed = true
	task.IsComplete = true
	coordinator.logger.Info("task completed", zap.String("task", task.ID))
	return task, nil
}

// Exit abandons the active task view and resets the session.
func (coordinator *Coordinator) Exit() {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	coordinator.keeper.Exit()
	coordinator.scheduler.Setup(0)
	coordinator.confirmed = false
}
