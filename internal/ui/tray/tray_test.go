package tray

import (
	"testing"
	"time"

	"hightense/internal/core/timekeeper"

	"github.com/stretchr/testify/assert"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		state     timekeeper.State
		remaining time.Duration
		want      string
	}{
		{state: timekeeper.StateIdle, want: "Status: idle"},
		{state: timekeeper.StateRunning, remaining: 1499 * time.Second, want: "Focusing: 24:59 left"},
		{state: timekeeper.StatePaused, remaining: 90 * time.Minute, want: "Paused: 90:00 left"},
		{state: timekeeper.StateComplete, want: "Session complete"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.state, tt.remaining))
		})
	}
}

func TestToggleLabel(t *testing.T) {
	assert.Equal(t, "Start", ToggleLabel(timekeeper.StateIdle))
	assert.Equal(t, "Pause", ToggleLabel(timekeeper.StateRunning))
	assert.Equal(t, "Resume", ToggleLabel(timekeeper.StatePaused))
}

func TestManagerWithoutDesktop(t *testing.T) {
	manager := New(nil, Callbacks{})

	manager.SetHasTask(true)
	manager.Update(timekeeper.StateRunning, time.Minute)

	assert.Equal(t, "Pause", manager.toggleItem.Label)
	assert.False(t, manager.toggleItem.Disabled)

	manager.Update(timekeeper.StateComplete, 0)
	assert.True(t, manager.toggleItem.Disabled)
}
