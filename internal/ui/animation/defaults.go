package animation

import (
	"time"

	"hightense/internal/core/adventure"
)

// DefaultConfig returns the stock companion timings.
func DefaultConfig() Config {
	return Config{
		IdleLabel:  adventure.IdleOutcome.Label,
		TapSquash:  adventure.Pose{Opacity: 1, Scale: 0.8},
		TapPress:   350 * time.Millisecond,
		TapRelease: 500 * time.Millisecond,
	}
}
