package adventure

import "time"

const (
	// Checkpoints is the number of adventures scheduled per session.
	Checkpoints = 4
	divisions   = Checkpoints + 1
)

// Thresholds returns the descending remaining-time values at which the
// adventures of a session of the given length fire.
func Thresholds(original time.Duration) []time.Duration {
	if original <= 0 {
		return nil
	}
	slice := original / divisions
	thresholds := make([]time.Duration, 0, Checkpoints)
	for i := 1; i <= Checkpoints; i++ {
		thresholds = append(thresholds, original-slice*time.Duration(i))
	}
	return thresholds
}
