package preferences

import (
	"time"

	"hightense/internal/core/adventure"
	"hightense/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	SessionLength   time.Duration
	AdjustStep      time.Duration
	ThresholdPolicy adventure.Policy
	ShowIntro       bool
}

// DefaultSettings returns default settings for High Tense.
func DefaultSettings() Settings {
	return Settings{
		SessionLength:   model.DefaultSessionDuration,
		AdjustStep:      model.DefaultAdjustStep,
		ThresholdPolicy: adventure.CollapseCrossed,
		ShowIntro:       true,
	}
}

// SessionConfig converts settings to a SessionConfig.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		DefaultDuration: settings.SessionLength,
		AdjustStep:      settings.AdjustStep,
		MaxDuration:     model.MaxSessionDuration,
	}.Normalized()
}
