package finished

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// MaxConfetti is the number of confetti the celebration grows to.
	MaxConfetti   = 3
	confettiPiece = "🎉"
)

// Confetti grows the celebration one piece per interval.
type Confetti struct {
	mu       sync.Mutex
	interval time.Duration
	onChange func(int)
	count    int
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewConfetti creates a confetti counter reporting each new count.
func NewConfetti(interval time.Duration, onChange func(int)) *Confetti {
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Confetti{interval: interval, onChange: onChange}
}

// Start resets the count to one and grows it until MaxConfetti.
func (confetti *Confetti) Start(ctx context.Context) {
	confetti.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	confetti.mu.Lock()
	confetti.count = 1
	confetti.cancel = cancel
	confetti.done = done
	confetti.mu.Unlock()
	confetti.onChange(1)

	go func() {
		defer close(done)
		defer cancel()
		ticker := time.NewTicker(confetti.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				confetti.mu.Lock()
				confetti.count++
				count := confetti.count
				confetti.mu.Unlock()
				confetti.onChange(count)
				if count >= MaxConfetti {
					return
				}
			}
		}
	}()
}

// Stop halts the growth and resets the count.
func (confetti *Confetti) Stop() {
	confetti.mu.Lock()
	cancel := confetti.cancel
	done := confetti.done
	confetti.cancel = nil
	confetti.done = nil
	confetti.count = 1
	confetti.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Count returns the current number of confetti.
func (confetti *Confetti) Count() int {
	confetti.mu.Lock()
	defer confetti.mu.Unlock()
	return confetti.count
}

// Render returns the confetti line for a count.
func Render(count int) string {
	if count < 1 {
		count = 1
	}
	return strings.TrimSpace(strings.Repeat(" "+confettiPiece+" ", count))
}
