// Package planner renders the task list and the session length controls.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hightense/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// DateLayout is the date format accepted by the task dialogs.
const DateLayout = "2006-01-02"

// Tasks is the part of the task store the planner edits.
type Tasks interface {
	ListTasksOrderedByDate(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, name string, date time.Time) (model.Task, error)
	UpdateTask(ctx context.Context, id string, fields model.TaskFields) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Callbacks defines planner action handlers.
type Callbacks struct {
	OnSelect      func(model.Task)
	OnAdjust      func(up bool) time.Duration
	OnPreferences func()
}

// Window lists tasks and opens them for a focus session.
type Window struct {
	window     fyne.Window
	tasks      Tasks
	callbacks  Callbacks
	logger     *zap.Logger
	items      []model.Task
	list       *widget.List
	countLabel *widget.Label
	emptyLabel *widget.Label
	timerLabel *canvas.Text
}

// New creates the planner window.
func New(app fyne.App, tasks Tasks, callbacks Callbacks, logger *zap.Logger) *Window {
	if logger == nil {
		logger = zap.NewNop()
	}
	window := app.NewWindow("High Tense")

	planner := &Window{
		window:    window,
		tasks:     tasks,
		callbacks: callbacks,
		logger:    logger.Named("planner"),
	}

	header := canvas.NewText("Task Planner", theme.Color(theme.ColorNameForeground))
	header.TextSize = 24
	header.TextStyle = fyne.TextStyle{Bold: true}

	planner.countLabel = widget.NewLabel(CountText(0))
	planner.emptyLabel = widget.NewLabelWithStyle("No Tasks!", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	planner.list = widget.NewList(
		func() int { return len(planner.items) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("task")
			name.Truncation = fyne.TextTruncateEllipsis
			date := widget.NewLabel(DateLayout)
			edit := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil)
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, container.NewHBox(date, edit, remove), name)
		},
		func(id widget.ListItemID, object fyne.CanvasObject) {
			if id < 0 || id >= len(planner.items) {
				return
			}
			task := planner.items[id]
			row := object.(*fyne.Container)
			name := row.Objects[0].(*widget.Label)
			controls := row.Objects[1].(*fyne.Container)
			date := controls.Objects[0].(*widget.Label)
			edit := controls.Objects[1].(*widget.Button)
			remove := controls.Objects[2].(*widget.Button)

			name.SetText(RowTitle(task))
			date.SetText(task.Date.Format(DateLayout))
			edit.OnTapped = func() { planner.showEditDialog(task) }
			remove.OnTapped = func() { planner.confirmDelete(task) }
		},
	)
	planner.list.OnSelected = func(id widget.ListItemID) {
		planner.list.UnselectAll()
		if id < 0 || id >= len(planner.items) {
			return
		}
		if planner.callbacks.OnSelect != nil {
			planner.callbacks.OnSelect(planner.items[id])
		}
	}

	planner.timerLabel = canvas.NewText("", theme.Color(theme.ColorNameForeground))
	planner.timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	planner.timerLabel.TextSize = 18
	minus := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() { planner.adjust(false) })
	plus := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() { planner.adjust(true) })
	timerRow := container.NewHBox(widget.NewLabel("Session"), layout.NewSpacer(), minus, planner.timerLabel, plus)

	newButton := widget.NewButtonWithIcon("New Task", theme.ContentAddIcon(), planner.showNewDialog)
	newButton.Importance = widget.HighImportance
	settingsButton := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		if planner.callbacks.OnPreferences != nil {
			planner.callbacks.OnPreferences()
		}
	})

	top := container.NewVBox(
		container.NewHBox(header, layout.NewSpacer(), settingsButton),
		planner.countLabel,
		widget.NewSeparator(),
	)
	bottom := container.NewVBox(widget.NewSeparator(), timerRow, newButton)
	body := container.NewStack(planner.list, container.NewCenter(planner.emptyLabel))

	window.SetContent(container.NewPadded(container.NewBorder(top, bottom, nil, nil, body)))
	window.Resize(fyne.NewSize(420, 560))
	return planner
}

// Window returns the underlying fyne window.
func (planner *Window) Window() fyne.Window {
	return planner.window
}

// Show reloads the task list and opens the window.
func (planner *Window) Show() {
	planner.Reload()
	planner.window.Show()
	planner.window.RequestFocus()
}

// Hide closes the window.
func (planner *Window) Hide() {
	planner.window.Hide()
}

// SetSessionLength updates the session timer label.
func (planner *Window) SetSessionLength(length time.Duration) {
	planner.timerLabel.Text = FormatLength(length)
	planner.timerLabel.Refresh()
}

// Reload fetches tasks from the store.
func (planner *Window) Reload() {
	items, err := planner.tasks.ListTasksOrderedByDate(context.Background())
	if err != nil {
		planner.logger.Error("list tasks", zap.Error(err))
		dialog.ShowError(err, planner.window)
		return
	}
	planner.items = items
	planner.countLabel.SetText(CountText(len(items)))
	if len(items) == 0 {
		planner.emptyLabel.Show()
	} else {
		planner.emptyLabel.Hide()
	}
	planner.list.Refresh()
}

func (planner *Window) adjust(up bool) {
	if planner.callbacks.OnAdjust == nil {
		return
	}
	planner.SetSessionLength(planner.callbacks.OnAdjust(up))
}

func (planner *Window) showNewDialog() {
	name := widget.NewEntry()
	name.SetPlaceHolder("Task name")
	date := widget.NewEntry()
	date.SetText(time.Now().Format(DateLayout))

	dialog.ShowForm("New Task", "Create", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Date", date),
	}, func(confirmed bool) {
		if !confirmed {
			return
		}
		parsed, err := ParseDate(date.Text)
		if err != nil {
			dialog.ShowError(err, planner.window)
			return
		}
		if _, err := planner.tasks.CreateTask(context.Background(), strings.TrimSpace(name.Text), parsed); err != nil {
			planner.logger.Error("create task", zap.Error(err))
			dialog.ShowError(err, planner.window)
			return
		}
		planner.Reload()
	}, planner.window)
}

func (planner *Window) showEditDialog(task model.Task) {
	name := widget.NewEntry()
	name.SetText(task.Name)
	date := widget.NewEntry()
	date.SetText(task.Date.Format(DateLayout))
	complete := widget.NewCheck("Complete", nil)
	complete.SetChecked(task.IsComplete)

	dialog.ShowForm("Edit Task", "Save", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Date", date),
		widget.NewFormItem("", complete),
	}, func(confirmed bool) {
		if !confirmed {
			return
		}
		fields, err := EditFields(task, name.Text, date.Text, complete.Checked)
		if err != nil {
			dialog.ShowError(err, planner.window)
			return
		}
		if _, err := planner.tasks.UpdateTask(context.Background(), task.ID, fields); err != nil {
			planner.logger.Error("update task", zap.String("task", task.ID), zap.Error(err))
			dialog.ShowError(err, planner.window)
			return
		}
		planner.Reload()
	}, planner.window)
}

func (planner *Window) confirmDelete(task model.Task) {
	dialog.ShowConfirm("Delete Task", fmt.Sprintf("Delete %q?", task.Name), func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := planner.tasks.DeleteTask(context.Background(), task.ID); err != nil {
			planner.logger.Error("delete task", zap.String("task", task.ID), zap.Error(err))
			dialog.ShowError(err, planner.window)
			return
		}
		planner.Reload()
	}, planner.window)
}
