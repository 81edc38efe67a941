package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hightense/internal/core/adventure"
	"hightense/internal/core/model"
	"hightense/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	SessionMinutes  int    `yaml:"session_minutes"`
	AdjustMinutes   int    `yaml:"adjust_minutes"`
	ThresholdPolicy string `yaml:"threshold_policy"`
	ShowIntro       *bool  `yaml:"show_intro,omitempty"`
}

// LoadSettings reads user preferences from YAML in dir.
// If the settings file does not exist, default settings are returned.
func LoadSettings(dir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(filepath.Join(dir, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML in dir.
func SaveSettings(dir string, settings preferences.Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	showIntro := settings.ShowIntro
	fileData := yamlSettings{
		SessionMinutes:  int(settings.SessionLength / time.Minute),
		AdjustMinutes:   int(settings.AdjustStep / time.Minute),
		ThresholdPolicy: settings.ThresholdPolicy.String(),
		ShowIntro:       &showIntro,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, settingsFileName), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	maxMinutes := int(model.MaxSessionDuration / time.Minute)
	if fileData.SessionMinutes > 0 && fileData.SessionMinutes <= maxMinutes {
		settings.SessionLength = time.Duration(fileData.SessionMinutes) * time.Minute
	}
	if fileData.AdjustMinutes > 0 && fileData.AdjustMinutes <= maxMinutes {
		settings.AdjustStep = time.Duration(fileData.AdjustMinutes) * time.Minute
	}
	if policy, err := adventure.ParsePolicy(fileData.ThresholdPolicy); err == nil {
		settings.ThresholdPolicy = policy
	}
	if fileData.ShowIntro != nil {
		settings.ShowIntro = *fileData.ShowIntro
	}
}
