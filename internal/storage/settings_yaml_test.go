package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hightense/internal/core/adventure"
	"hightense/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaultsWhenMissing(t *testing.T) {
	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveAndLoadSettings(t *testing.T) {
	dir := t.TempDir()
	want := preferences.Settings{
		SessionLength:   45 * time.Minute,
		AdjustStep:      10 * time.Minute,
		ThresholdPolicy: adventure.FrontOnly,
		ShowIntro:       false,
	}

	require.NoError(t, SaveSettings(dir, want))
	got, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSettingsIgnoresOutOfRangeValues(t *testing.T) {
	dir := t.TempDir()
	raw := "session_minutes: 99999\nadjust_minutes: -3\nthreshold_policy: sometimes\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(raw), 0o644))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}
