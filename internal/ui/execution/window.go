package execution

import (
	"fmt"
	"image/color"
	"time"

	"hightense/internal/core/adventure"
	"hightense/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines execution view action handlers.
type Callbacks struct {
	OnToggle       func()
	OnExit         func()
	OnMarkComplete func()
	OnPetTapped    func()
}

// Window shows the active task, the countdown and the companion.
type Window struct {
	window        fyne.Window
	callbacks     Callbacks
	pet           *petSprite
	stage         *fyne.Container
	stageLayout   *stageLayout
	statusLabel   *widget.Label
	titleLabel    *widget.Label
	startLabel    *widget.Label
	timerLabel    *canvas.Text
	toggleButton  *widget.Button
	congratsPanel *fyne.Container
	mainPanel     *fyne.Container
}

var executionColor = color.NRGBA{R: 196, G: 226, B: 150, A: 255}

const (
	petBaseSize   = float32(100)
	stageSize     = float32(150)
	encouragement = "You've Got This!"
)

// New creates the execution window. It stays hidden until Show.
func New(app fyne.App, sprite fyne.Resource, callbacks Callbacks) *Window {
	window := app.NewWindow("High Tense")

	execution := &Window{
		window:    window,
		callbacks: callbacks,
	}

	execution.pet = newPetSprite(sprite, func() {
		if execution.callbacks.OnPetTapped != nil {
			execution.callbacks.OnPetTapped()
		}
	})
	stageBackground := canvas.NewRectangle(executionColor)
	stageBackground.CornerRadius = 25
	stageBackground.StrokeColor = theme.Color(theme.ColorNameForeground)
	stageBackground.StrokeWidth = 3
	execution.stageLayout = &stageLayout{pose: adventure.NeutralPose()}
	execution.stage = container.New(execution.stageLayout, stageBackground, execution.pet)

	execution.statusLabel = widget.NewLabelWithStyle(adventure.IdleOutcome.Label, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	execution.statusLabel.Wrapping = fyne.TextWrapWord

	execution.titleLabel = widget.NewLabel("Title:")
	execution.titleLabel.Wrapping = fyne.TextWrapWord
	execution.startLabel = widget.NewLabel("Start Time: ")
	encourage := widget.NewLabelWithStyle(encouragement, fyne.TextAlignLeading, fyne.TextStyle{Italic: true})

	execution.timerLabel = canvas.NewText("--:--", theme.Color(theme.ColorNameForeground))
	execution.timerLabel.Alignment = fyne.TextAlignCenter
	execution.timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	execution.timerLabel.TextSize = 20

	execution.toggleButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		if execution.callbacks.OnToggle != nil {
			execution.callbacks.OnToggle()
		}
	})
	exitButton := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		if execution.callbacks.OnExit != nil {
			execution.callbacks.OnExit()
		}
	})

	details := container.NewVBox(
		widget.NewSeparator(),
		execution.titleLabel,
		widget.NewSeparator(),
		execution.startLabel,
		widget.NewSeparator(),
		encourage,
		widget.NewSeparator(),
	)
	timerBox := container.NewVBox(execution.timerLabel, execution.toggleButton)
	execution.mainPanel = container.NewVBox(
		container.NewCenter(exitButton),
		container.NewCenter(execution.stage),
		execution.statusLabel,
		container.NewGridWithColumns(2, details, timerBox),
	)

	congratsTitle := canvas.NewText("Congratulations!", theme.Color(theme.ColorNameForeground))
	congratsTitle.TextSize = 35
	congratsTitle.TextStyle = fyne.TextStyle{Bold: true}
	congratsTitle.Alignment = fyne.TextAlignCenter
	congratsSubtitle := canvas.NewText("{ YOU COMPLETED }", theme.Color(theme.ColorNameForeground))
	congratsSubtitle.TextSize = 25
	congratsSubtitle.TextStyle = fyne.TextStyle{Monospace: true}
	congratsSubtitle.Alignment = fyne.TextAlignCenter
	markButton := widget.NewButton("Mark Task Complete", func() {
		if execution.callbacks.OnMarkComplete != nil {
			execution.callbacks.OnMarkComplete()
		}
	})
	congratsBackground := canvas.NewRectangle(executionColor)
	congratsBackground.CornerRadius = 25
	execution.congratsPanel = container.NewCenter(container.NewVBox(
		container.NewStack(congratsBackground, container.NewPadded(container.NewVBox(congratsTitle, congratsSubtitle))),
		container.NewCenter(markButton),
	))
	execution.congratsPanel.Hide()

	window.SetContent(container.NewPadded(container.NewStack(execution.mainPanel, execution.congratsPanel)))
	window.SetCloseIntercept(func() {
		if execution.callbacks.OnExit != nil {
			execution.callbacks.OnExit()
			return
		}
		window.Hide()
	})
	window.Resize(fyne.NewSize(420, 640))
	return execution
}

// Show opens the window for a task.
func (execution *Window) Show(taskName string, remaining time.Duration) {
	execution.titleLabel.SetText("Title:\n" + taskName)
	execution.startLabel.SetText("Start Time: " + time.Now().Format("Jan 2, 2006 3:04:05 PM"))
	execution.setRemainingUnsafe(remaining)
	execution.setRunningUnsafe(false)
	execution.congratsPanel.Hide()
	execution.mainPanel.Show()
	execution.window.Show()
	execution.window.RequestFocus()
}

// Window returns the underlying fyne window.
func (execution *Window) Window() fyne.Window {
	return execution.window
}

// Hide closes the window.
func (execution *Window) Hide() {
	execution.window.Hide()
}

// HandleEvent renders a TimeKeeper event.
func (execution *Window) HandleEvent(event timekeeper.Event) {
	fyne.Do(func() {
		switch event.Type {
		case timekeeper.EventProgress:
			execution.setRemainingUnsafe(event.Remaining)
		case timekeeper.EventStateChange:
			execution.setRemainingUnsafe(event.Remaining)
			execution.setRunningUnsafe(event.State == timekeeper.StateRunning)
			if event.State == timekeeper.StateRunning && event.Remaining > 0 {
				execution.congratsPanel.Hide()
			}
		case timekeeper.EventComplete:
			execution.setRemainingUnsafe(0)
			execution.setRunningUnsafe(false)
			execution.congratsPanel.Show()
		}
	})
}

// SetPose moves the companion.
func (execution *Window) SetPose(pose adventure.Pose) {
	fyne.Do(func() {
		execution.stageLayout.pose = pose
		execution.pet.setOpacity(pose.Opacity)
		execution.stage.Refresh()
	})
}

// SetStatus updates the companion status text.
func (execution *Window) SetStatus(text string) {
	fyne.Do(func() {
		execution.statusLabel.SetText(text)
	})
}

func (execution *Window) setRemainingUnsafe(remaining time.Duration) {
	execution.timerLabel.Text = formatDuration(remaining)
	execution.timerLabel.Refresh()
}

func (execution *Window) setRunningUnsafe(running bool) {
	if running {
		execution.toggleButton.SetIcon(theme.MediaPauseIcon())
		execution.toggleButton.Importance = widget.DangerImportance
	} else {
		execution.toggleButton.SetIcon(theme.MediaPlayIcon())
		execution.toggleButton.Importance = widget.SuccessImportance
	}
	execution.toggleButton.Refresh()
}

// formatDuration renders a countdown as MM:SS, with minutes allowed past 59.
func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// stageLayout fills the stage with its background and places the pet by pose.
type stageLayout struct {
	pose adventure.Pose
}

func (layout *stageLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	background := objects[0]
	pet := objects[1]

	background.Move(fyne.NewPos(0, 0))
	background.Resize(size)

	scale := float32(layout.pose.Scale)
	if scale <= 0 {
		scale = 1
	}
	side := petBaseSize * scale
	x := (size.Width-side)/2 + float32(layout.pose.OffsetX)
	y := (size.Height-side)/2 + float32(layout.pose.OffsetY)
	pet.Move(fyne.NewPos(x, y))
	pet.Resize(fyne.NewSize(side, side))
}

func (layout *stageLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(stageSize, stageSize)
}
