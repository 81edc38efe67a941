package animation

import (
	"context"
	"sync"
	"time"

	"hightense/internal/core/adventure"
)

// Config contains companion animation values.
type Config struct {
	IdleLabel string

	TapSquash  adventure.Pose
	TapPress   time.Duration
	TapRelease time.Duration
}

// Engine plays adventure effects on the companion.
type Engine struct {
	startMu   sync.Mutex
	mu        sync.Mutex
	config    Config
	applyPose func(adventure.Pose)
	setStatus func(string)
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a new animation engine.
func New(config Config, applyPose func(adventure.Pose), setStatus func(string)) *Engine {
	if applyPose == nil {
		applyPose = func(adventure.Pose) {}
	}
	if setStatus == nil {
		setStatus = func(string) {}
	}
	return &Engine{
		config:    config,
		applyPose: applyPose,
		setStatus: setStatus,
	}
}

// Play starts the effect of an outcome, replacing whatever was playing.
func (engine *Engine) Play(ctx context.Context, outcome adventure.Outcome) {
	engine.start(ctx, func(runCtx context.Context) {
		engine.setStatus(outcome.Label)
		started := time.Now()
		defer engine.rest()

		effect := outcome.Effect
		for cycle := 0; cycle < effect.Repeats && len(effect.Frames) > 0; cycle++ {
			for _, frame := range effect.Frames {
				engine.applyPose(frame)
				if !sleepWithContext(runCtx, effect.Step) {
					return
				}
			}
		}
		engine.applyPose(adventure.NeutralPose())

		if hold := outcome.Duration - time.Since(started); hold > 0 {
			sleepWithContext(runCtx, hold)
		}
	})
}

// Tap squashes the companion briefly when it is poked.
func (engine *Engine) Tap(ctx context.Context) {
	engine.mu.Lock()
	busy := engine.done != nil
	engine.mu.Unlock()
	if busy {
		return
	}

	engine.start(ctx, func(runCtx context.Context) {
		engine.applyPose(engine.config.TapSquash)
		if sleepWithContext(runCtx, engine.config.TapPress) {
			sleepWithContext(runCtx, engine.config.TapRelease)
		}
		engine.applyPose(adventure.NeutralPose())
	})
}

// Stop terminates any active animation and waits for it to settle.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	done := engine.haltLocked()
	engine.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Playing reports whether a timeline is active.
func (engine *Engine) Playing() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.done != nil
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.startMu.Lock()
	defer engine.startMu.Unlock()

	engine.mu.Lock()
	previous := engine.haltLocked()
	engine.mu.Unlock()
	if previous != nil {
		<-previous
	}

	runCtx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	engine.mu.Lock()
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		run(runCtx)

		engine.mu.Lock()
		if engine.done == done {
			engine.done = nil
			engine.cancel = nil
		}
		engine.mu.Unlock()
	}()
}

func (engine *Engine) haltLocked() chan struct{} {
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	done := engine.done
	engine.done = nil
	return done
}

func (engine *Engine) rest() {
	engine.applyPose(adventure.NeutralPose())
	engine.setStatus(engine.config.IdleLabel)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
