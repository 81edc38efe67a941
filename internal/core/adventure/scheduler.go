package adventure

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Policy decides what happens to thresholds crossed together in one change.
type Policy int

const (
	// CollapseCrossed fires once for the nearest crossed threshold and drops
	// every other threshold the change went past.
	CollapseCrossed Policy = iota
	// FrontOnly drops just the front threshold; later changes fire the rest.
	FrontOnly
)

// String returns the settings name of the policy.
func (policy Policy) String() string {
	switch policy {
	case FrontOnly:
		return "front_only"
	default:
		return "collapse"
	}
}

// ParsePolicy converts a settings name into a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch value {
	case "", "collapse":
		return CollapseCrossed, nil
	case "front_only":
		return FrontOnly, nil
	default:
		return CollapseCrossed, fmt.Errorf("unknown threshold policy %q", value)
	}
}

// Config contains scheduler options.
type Config struct {
	Table       []Outcome
	Policy      Policy
	Rand        *rand.Rand
	Now         func() time.Time
	OnAdventure func(Outcome)
	Logger      *zap.Logger
}

// Scheduler fires a random adventure each time the remaining session time
// crosses one of the precomputed thresholds.
type Scheduler struct {
	mu          sync.Mutex
	table       []Outcome
	policy      Policy
	rng         *rand.Rand
	now         func() time.Time
	onAdventure func(Outcome)
	logger      *zap.Logger
	thresholds  []time.Duration
	last        Outcome
	lastAt      time.Time
}

// New creates a scheduler. An empty table uses DefaultTable.
func New(config Config) *Scheduler {
	if len(config.Table) == 0 {
		config.Table = DefaultTable()
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Scheduler{
		table:       append([]Outcome(nil), config.Table...),
		policy:      config.Policy,
		rng:         config.Rand,
		now:         config.Now,
		onAdventure: config.OnAdventure,
		logger:      config.Logger.Named("adventure"),
		last:        IdleOutcome,
	}
}

// SetOnAdventure sets the callback fired with each triggered outcome.
func (scheduler *Scheduler) SetOnAdventure(handler func(Outcome)) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.onAdventure = handler
}

// SetPolicy changes how simultaneously crossed thresholds are handled.
func (scheduler *Scheduler) SetPolicy(policy Policy) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.policy = policy
}

// Setup computes the thresholds for a session of the given length.
func (scheduler *Scheduler) Setup(original time.Duration) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.thresholds = Thresholds(original)
	scheduler.last = IdleOutcome
	scheduler.lastAt = time.Time{}
}

// Pending returns the thresholds that have not fired yet.
func (scheduler *Scheduler) Pending() []time.Duration {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return append([]time.Duration(nil), scheduler.thresholds...)
}

// RemainingChanged lets the scheduler watch a TimeKeeper.
func (scheduler *Scheduler) RemainingChanged(remaining time.Duration) {
	scheduler.Check(remaining)
}

// Check fires an adventure when remaining has reached the front threshold.
// It reports whether an adventure fired.
func (scheduler *Scheduler) Check(remaining time.Duration) bool {
	scheduler.mu.Lock()
	if len(scheduler.thresholds) == 0 || remaining > scheduler.thresholds[0] {
		scheduler.mu.Unlock()
		return false
	}

	consumed := 1
	if scheduler.policy == CollapseCrossed {
		for consumed < len(scheduler.thresholds) && remaining <= scheduler.thresholds[consumed] {
			consumed++
		}
	}
	if consumed > 1 {
		scheduler.logger.Debug("thresholds collapsed",
			zap.Duration("remaining", remaining),
			zap.Int("skipped", consumed-1))
	}
	scheduler.thresholds = scheduler.thresholds[consumed:]
	outcome, handler := scheduler.drawLocked()
	scheduler.mu.Unlock()

	if handler != nil {
		handler(outcome)
	}
	return true
}

// Trigger draws an outcome uniformly from the table and announces it.
func (scheduler *Scheduler) Trigger() Outcome {
	scheduler.mu.Lock()
	outcome, handler := scheduler.drawLocked()
	scheduler.mu.Unlock()

	if handler != nil {
		handler(outcome)
	}
	return outcome
}

// Current returns the adventure still playing, or IdleOutcome.
func (scheduler *Scheduler) Current() Outcome {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.lastAt.IsZero() || !scheduler.now().Before(scheduler.lastAt.Add(scheduler.last.Duration)) {
		return IdleOutcome
	}
	return scheduler.last
}

func (scheduler *Scheduler) drawLocked() (Outcome, func(Outcome)) {
	outcome := scheduler.table[scheduler.rng.Intn(len(scheduler.table))]
	scheduler.last = outcome
	scheduler.lastAt = scheduler.now()
	scheduler.logger.Info("adventure", zap.Int("code", outcome.Code), zap.String("label", outcome.Label))
	return outcome, scheduler.onAdventure
}
