// Package finished renders the celebration shown after a completed task.
package finished

import (
	"context"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// IntroText introduces the companion.
const IntroText = "This is your study buddy, Pickle.\n" +
	"She will be here keeping you company and judging as you work.\n" +
	"Be careful though, she isn't just any typical cat!"

var (
	bannerColor = color.NRGBA{R: 248, G: 255, B: 171, A: 255}
	friendColor = color.NRGBA{R: 220, G: 40, B: 40, A: 255}
)

// Window shows the finished celebration.
type Window struct {
	app          fyne.App
	window       fyne.Window
	sprite       fyne.Resource
	confetti     *Confetti
	confettiText *canvas.Text
	onClose      func()
}

// New creates the finished window.
func New(app fyne.App, sprite fyne.Resource, onClose func()) *Window {
	window := app.NewWindow("Yippee!!!")
	finished := &Window{
		app:     app,
		window:  window,
		sprite:  sprite,
		onClose: onClose,
	}

	title := canvas.NewText("Yippee!!!", color.Black)
	title.TextSize = 40
	title.Alignment = fyne.TextAlignCenter

	finished.confettiText = canvas.NewText(Render(1), color.Black)
	finished.confettiText.TextSize = 48
	finished.confettiText.Alignment = fyne.TextAlignCenter
	finished.confetti = NewConfetti(time.Second, func(count int) {
		fyne.Do(func() {
			finished.confettiText.Text = Render(count)
			finished.confettiText.Refresh()
		})
	})

	bannerBackground := canvas.NewRectangle(bannerColor)
	bannerBackground.CornerRadius = 35
	banner := container.NewStack(bannerBackground, container.NewPadded(container.NewVBox(title, finished.confettiText)))

	celebrate := canvas.NewText("Celebrate with", theme.Color(theme.ColorNameForeground))
	celebrate.TextSize = 28
	celebrate.Alignment = fyne.TextAlignCenter
	friends := canvas.NewText("Friends!", friendColor)
	friends.TextSize = 28
	friends.TextStyle = fyne.TextStyle{Bold: true, Italic: true}
	friends.Alignment = fyne.TextAlignCenter

	meet := widget.NewButton("Meet Pickle Again", finished.ShowIntro)
	meet.Importance = widget.SuccessImportance
	done := widget.NewButtonWithIcon("Back to Tasks", theme.NavigateBackIcon(), finished.close)

	window.SetContent(container.NewPadded(container.NewVBox(
		banner,
		layout.NewSpacer(),
		celebrate,
		friends,
		layout.NewSpacer(),
		container.NewCenter(meet),
		container.NewCenter(done),
	)))
	window.SetCloseIntercept(finished.close)
	window.Resize(fyne.NewSize(400, 520))
	return finished
}

// Show opens the celebration and starts the confetti.
func (finished *Window) Show() {
	finished.confetti.Start(context.Background())
	finished.window.Show()
	finished.window.RequestFocus()
}

// ShowIntro opens the companion introduction.
func (finished *Window) ShowIntro() {
	ShowIntro(finished.app, finished.sprite)
}

func (finished *Window) close() {
	finished.confetti.Stop()
	finished.window.Hide()
	if finished.onClose != nil {
		finished.onClose()
	}
}

// ShowIntro opens a window introducing the companion.
func ShowIntro(app fyne.App, sprite fyne.Resource) {
	window := app.NewWindow("Welcome!")

	title := canvas.NewText("Welcome!", theme.Color(theme.ColorNameForeground))
	title.TextSize = 32
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	text := widget.NewLabelWithStyle(IntroText, fyne.TextAlignCenter, fyne.TextStyle{})
	text.Wrapping = fyne.TextWrapWord

	content := container.NewVBox(title, text)
	if sprite != nil {
		image := canvas.NewImageFromResource(sprite)
		image.FillMode = canvas.ImageFillContain
		image.SetMinSize(fyne.NewSize(200, 200))
		content.Add(container.NewCenter(image))
	}
	content.Add(container.NewCenter(widget.NewButtonWithIcon("", theme.ConfirmIcon(), window.Close)))

	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(400, 480))
	window.Show()
}
