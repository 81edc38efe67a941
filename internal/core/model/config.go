package model

import "time"

const (
	// DefaultSessionDuration is the countdown a fresh session starts with.
	DefaultSessionDuration = 1800 * time.Second
	// DefaultAdjustStep is the amount Increase and Decrease move the countdown by.
	DefaultAdjustStep = 300 * time.Second
	// MaxSessionDuration caps manual adjustments.
	MaxSessionDuration = 86400 * time.Second
)

// SessionConfig contains runtime settings for the session TimeKeeper.
type SessionConfig struct {
	DefaultDuration time.Duration
	AdjustStep      time.Duration
	MaxDuration     time.Duration
}

// DefaultSessionConfig returns the stock session settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		DefaultDuration: DefaultSessionDuration,
		AdjustStep:      DefaultAdjustStep,
		MaxDuration:     MaxSessionDuration,
	}
}

// Normalized fills zero fields with defaults.
func (config SessionConfig) Normalized() SessionConfig {
	if config.DefaultDuration <= 0 {
		config.DefaultDuration = DefaultSessionDuration
	}
	if config.AdjustStep <= 0 {
		config.AdjustStep = DefaultAdjustStep
	}
	if config.MaxDuration <= 0 {
		config.MaxDuration = MaxSessionDuration
	}
	if config.DefaultDuration > config.MaxDuration {
		config.DefaultDuration = config.MaxDuration
	}
	return config
}
