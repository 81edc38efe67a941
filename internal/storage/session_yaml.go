package storage

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hightense/internal/core/model"
	"hightense/internal/core/timekeeper"

	"gopkg.in/yaml.v3"
)

const sessionFileName = "session.yaml"

type yamlSession struct {
	SavedExitTime string   `yaml:"saved_exit_time,omitempty"`
	RemainingTime *float64 `yaml:"remaining_time,omitempty"`
	IsRunning     *bool    `yaml:"is_running,omitempty"`
}

// SessionFile keeps the in-flight session snapshot in a small YAML file.
type SessionFile struct {
	mu   sync.Mutex
	path string
}

// NewSessionFile returns a state store writing into dir.
func NewSessionFile(dir string) *SessionFile {
	return &SessionFile{path: filepath.Join(dir, sessionFileName)}
}

// Path returns the file location.
func (file *SessionFile) Path() string {
	return file.path
}

// Save writes the snapshot.
func (file *SessionFile) Save(snapshot timekeeper.Snapshot) error {
	file.mu.Lock()
	defer file.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(file.path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	remaining := snapshot.Remaining.Seconds()
	running := snapshot.Running
	fileData := yamlSession{
		RemainingTime: &remaining,
		IsRunning:     &running,
	}
	if !snapshot.SavedExitTime.IsZero() {
		fileData.SavedExitTime = snapshot.SavedExitTime.UTC().Format(time.RFC3339Nano)
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal session yaml: %w", err)
	}
	if err := os.WriteFile(file.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load reads the snapshot. Missing keys fall back to a default-length,
// stopped session without an exit time.
func (file *SessionFile) Load() (timekeeper.Snapshot, bool, error) {
	file.mu.Lock()
	defer file.mu.Unlock()

	rawData, err := os.ReadFile(file.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return timekeeper.Snapshot{}, false, nil
		}
		return timekeeper.Snapshot{}, false, fmt.Errorf("read session file: %w", err)
	}

	var fileData yamlSession
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return timekeeper.Snapshot{}, false, fmt.Errorf("parse session yaml: %w", err)
	}

	snapshot := timekeeper.Snapshot{Remaining: model.DefaultSessionDuration}
	if fileData.RemainingTime != nil && *fileData.RemainingTime >= 0 {
		seconds := math.Min(*fileData.RemainingTime, model.MaxSessionDuration.Seconds())
		snapshot.Remaining = time.Duration(seconds * float64(time.Second))
	}
	if fileData.IsRunning != nil {
		snapshot.Running = *fileData.IsRunning
	}
	if fileData.SavedExitTime != "" {
		exitTime, err := time.Parse(time.RFC3339Nano, fileData.SavedExitTime)
		if err != nil {
			return timekeeper.Snapshot{}, false, fmt.Errorf("parse saved exit time: %w", err)
		}
		snapshot.SavedExitTime = exitTime
	}
	return snapshot, true, nil
}

// Clear removes the file.
func (file *SessionFile) Clear() error {
	file.mu.Lock()
	defer file.mu.Unlock()

	if err := os.Remove(file.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
