package tray

import (
	"fmt"
	"time"

	"hightense/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnOpenPlanner func()
	OnPreferences func()
	OnToggle      func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	callbacks  Callbacks
	state      timekeeper.State
	remaining  time.Duration
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		state:     timekeeper.StateIdle,
	}

	manager.statusItem = fyne.NewMenuItem(StatusText(manager.state, 0), nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnToggle != nil {
			manager.callbacks.OnToggle()
		}
	})
	manager.toggleItem.Disabled = true

	manager.refreshMenu()
	return manager
}

// Update renders the session state in the tray menu.
func (manager *Manager) Update(state timekeeper.State, remaining time.Duration) {
	manager.state = state
	manager.remaining = remaining
	manager.statusItem.Label = StatusText(state, remaining)
	manager.toggleItem.Label = ToggleLabel(state)
	manager.toggleItem.Disabled = state == timekeeper.StateComplete
	manager.refreshMenu()
}

// SetHasTask enables the toggle only while a task is bound.
func (manager *Manager) SetHasTask(hasTask bool) {
	manager.toggleItem.Disabled = !hasTask || manager.state == timekeeper.StateComplete
	manager.refreshMenu()
}

// StatusText formats the tray status line.
func StatusText(state timekeeper.State, remaining time.Duration) string {
	switch state {
	case timekeeper.StateRunning:
		return fmt.Sprintf("Focusing: %s left", formatMinutes(remaining))
	case timekeeper.StatePaused:
		return fmt.Sprintf("Paused: %s left", formatMinutes(remaining))
	case timekeeper.StateComplete:
		return "Session complete"
	default:
		return "Status: idle"
	}
}

// ToggleLabel names the toggle action for a state.
func ToggleLabel(state timekeeper.State) string {
	switch state {
	case timekeeper.StateRunning:
		return "Pause"
	case timekeeper.StatePaused:
		return "Resume"
	default:
		return "Start"
	}
}

func formatMinutes(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("High Tense",
		manager.statusItem,
		manager.toggleItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Planner", func() {
			if manager.callbacks.OnOpenPlanner != nil {
				manager.callbacks.OnOpenPlanner()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
