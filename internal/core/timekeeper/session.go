package timekeeper

import "time"

// Session is the in-flight state of one timed work interval.
type Session struct {
	Remaining     time.Duration
	Original      time.Duration
	Running       bool
	StartTime     time.Time
	ResumedAt     time.Time
	SavedExitTime time.Time
	TaskID        string
}

// Progress reports the completed fraction of the session in [0, 1].
func (session Session) Progress() float64 {
	if session.Original <= 0 {
		return 0
	}
	progress := float64(session.Original-session.Remaining) / float64(session.Original)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Snapshot is the persisted subset of a Session.
// A zero SavedExitTime means no exit time was recorded.
type Snapshot struct {
	Remaining     time.Duration
	SavedExitTime time.Time
	Running       bool
}

// StateStore persists session snapshots across launches.
type StateStore interface {
	Save(snapshot Snapshot) error
	// Load reports false when nothing has been saved yet.
	Load() (Snapshot, bool, error)
	Clear() error
}

// RestoredRemaining subtracts the wall-clock time elapsed since the saved exit
// from the saved remaining time, never going below zero.
func RestoredRemaining(snapshot Snapshot, now time.Time) time.Duration {
	remaining := snapshot.Remaining
	if !snapshot.SavedExitTime.IsZero() {
		if elapsed := now.Sub(snapshot.SavedExitTime); elapsed > 0 {
			remaining -= elapsed
		}
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingWatcher observes every change of the remaining time.
// It runs synchronously inside the TimeKeeper and must not call back into it.
type RemainingWatcher interface {
	RemainingChanged(remaining time.Duration)
}

// WatcherFunc adapts a function to RemainingWatcher.
type WatcherFunc func(remaining time.Duration)

// RemainingChanged calls fn.
func (fn WatcherFunc) RemainingChanged(remaining time.Duration) {
	fn(remaining)
}
