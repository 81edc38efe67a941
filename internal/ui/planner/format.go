package planner

import (
	"fmt"
	"strings"
	"time"

	"hightense/internal/core/model"
)

// CountText describes how many tasks are listed.
func CountText(count int) string {
	if count == 1 {
		return "1 Task"
	}
	return fmt.Sprintf("%d Tasks", count)
}

// RowTitle renders a task name, marking finished tasks.
func RowTitle(task model.Task) string {
	name := task.Name
	if name == "" {
		name = "Untitled"
	}
	if task.IsComplete {
		return "✓ " + name
	}
	return name
}

// FormatLength renders a session length as MM:SS.
func FormatLength(length time.Duration) string {
	if length < 0 {
		length = 0
	}
	seconds := int(length.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ParseDate reads a dialog date in local time.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: use YYYY-MM-DD", value)
	}
	return parsed, nil
}

// EditFields returns only the task fields the edit dialog changed.
func EditFields(task model.Task, name, date string, complete bool) (model.TaskFields, error) {
	var fields model.TaskFields

	name = strings.TrimSpace(name)
	if name != task.Name {
		fields.Name = &name
	}
	if date != task.Date.Format(DateLayout) {
		parsed, err := ParseDate(date)
		if err != nil {
			return model.TaskFields{}, err
		}
		fields.Date = &parsed
	}
	if complete != task.IsComplete {
		fields.IsComplete = &complete
	}
	return fields, nil
}
