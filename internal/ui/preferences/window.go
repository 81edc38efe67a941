package preferences

import (
	"fmt"
	"strconv"
	"time"

	"hightense/internal/core/adventure"
	"hightense/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

var policyOptions = []string{
	adventure.CollapseCrossed.String(),
	adventure.FrontOnly.String(),
}

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  Settings
	onSave    func(Settings)
	session   *widget.Entry
	step      *widget.Entry
	policy    *widget.Select
	showIntro *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("High Tense Settings")

	session := widget.NewEntry()
	step := widget.NewEntry()
	policy := widget.NewSelect(policyOptions, nil)
	showIntro := widget.NewCheck("Show the introduction on launch", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Default length"), session, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Adjust step"), step, widget.NewLabel("min")),
		widget.NewLabelWithStyle("Adventures", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Crossed checkpoints"), policy),
		showIntro,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(func() {
		window.Hide()
	})
	window.Resize(fyne.NewSize(380, 280))

	prefs := &Window{
		window:    window,
		onSave:    onSave,
		session:   session,
		step:      step,
		policy:    policy,
		showIntro: showIntro,
	}
	prefs.UpdateSettings(settings)
	saveButton.OnTapped = prefs.handleSave
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.session.SetText(fmt.Sprintf("%d", int(settings.SessionLength.Minutes())))
	prefs.step.SetText(fmt.Sprintf("%d", int(settings.AdjustStep.Minutes())))
	prefs.policy.SetSelected(settings.ThresholdPolicy.String())
	prefs.showIntro.SetChecked(settings.ShowIntro)
}

func (prefs *Window) handleSave() {
	prefs.settings = Apply(prefs.settings, prefs.session.Text, prefs.step.Text, prefs.policy.Selected, prefs.showIntro.Checked)
	if prefs.onSave != nil {
		prefs.onSave(prefs.settings)
	}
	prefs.window.Hide()
}

// Apply merges form values into settings. Invalid values keep the old setting.
func Apply(settings Settings, sessionMinutes, stepMinutes, policy string, showIntro bool) Settings {
	maxMinutes := int(model.MaxSessionDuration.Minutes())
	if minutes, ok := parsePositiveInt(sessionMinutes); ok && minutes <= maxMinutes {
		settings.SessionLength = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(stepMinutes); ok && minutes <= maxMinutes {
		settings.AdjustStep = time.Duration(minutes) * time.Minute
	}
	if parsed, err := adventure.ParsePolicy(policy); err == nil {
		settings.ThresholdPolicy = parsed
	}
	settings.ShowIntro = showIntro
	return settings
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
