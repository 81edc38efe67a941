package model

import "time"

// Task is a user-created work item.
type Task struct {
	ID         string
	Name       string
	Date       time.Time
	IsComplete bool
}

// TaskFields carries optional task changes. Nil fields are left untouched.
type TaskFields struct {
	Name       *string
	Date       *time.Time
	IsComplete *bool
}
