package adventure

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seconds(values ...int) []time.Duration {
	durations := make([]time.Duration, 0, len(values))
	for _, value := range values {
		durations = append(durations, time.Duration(value)*time.Second)
	}
	return durations
}

func newCountingScheduler(policy Policy) (*Scheduler, *[]Outcome) {
	fired := &[]Outcome{}
	scheduler := New(Config{
		Policy: policy,
		Rand:   rand.New(rand.NewSource(7)),
		OnAdventure: func(outcome Outcome) {
			*fired = append(*fired, outcome)
		},
	})
	return scheduler, fired
}

func TestThresholdsSplitSessionIntoFifths(t *testing.T) {
	assert.Equal(t, seconds(1440, 1080, 720, 360), Thresholds(1800*time.Second))
	assert.Equal(t, seconds(48, 36, 24, 12), Thresholds(60*time.Second))
	assert.Nil(t, Thresholds(0))
}

func TestSetupStoresThresholds(t *testing.T) {
	scheduler, _ := newCountingScheduler(CollapseCrossed)
	scheduler.Setup(1800 * time.Second)

	assert.Equal(t, seconds(1440, 1080, 720, 360), scheduler.Pending())
}

func TestEachThresholdFiresOnce(t *testing.T) {
	scheduler, fired := newCountingScheduler(CollapseCrossed)
	scheduler.Setup(1800 * time.Second)

	assert.False(t, scheduler.Check(1441*time.Second))
	assert.True(t, scheduler.Check(1440*time.Second))
	assert.Len(t, *fired, 1)
	assert.Equal(t, seconds(1080, 720, 360), scheduler.Pending())

	assert.False(t, scheduler.Check(1439*time.Second))
	assert.Len(t, *fired, 1)
}

func TestFullCountdownFiresFourAdventures(t *testing.T) {
	scheduler, fired := newCountingScheduler(CollapseCrossed)
	scheduler.Setup(1800 * time.Second)

	for remaining := 1799 * time.Second; remaining >= 0; remaining -= time.Second {
		scheduler.RemainingChanged(remaining)
	}

	assert.Len(t, *fired, Checkpoints)
	assert.Empty(t, scheduler.Pending())
}

func TestCollapseCrossedFiresOnceForLargeDrop(t *testing.T) {
	scheduler, fired := newCountingScheduler(CollapseCrossed)
	scheduler.Setup(1800 * time.Second)

	assert.True(t, scheduler.Check(700*time.Second))
	assert.Len(t, *fired, 1)
	assert.Equal(t, seconds(360), scheduler.Pending())

	assert.False(t, scheduler.Check(699*time.Second))
	assert.Len(t, *fired, 1)
}

func TestFrontOnlyReplaysCrossedThresholds(t *testing.T) {
	scheduler, fired := newCountingScheduler(FrontOnly)
	scheduler.Setup(1800 * time.Second)

	assert.True(t, scheduler.Check(700*time.Second))
	assert.Equal(t, seconds(1080, 720, 360), scheduler.Pending())
	assert.True(t, scheduler.Check(699*time.Second))
	assert.True(t, scheduler.Check(698*time.Second))
	assert.False(t, scheduler.Check(697*time.Second))
	assert.Len(t, *fired, 3)
	assert.Equal(t, seconds(360), scheduler.Pending())
}

func TestSetupResetsConsumedThresholds(t *testing.T) {
	scheduler, _ := newCountingScheduler(CollapseCrossed)
	scheduler.Setup(1800 * time.Second)
	scheduler.Check(0)
	require.Empty(t, scheduler.Pending())

	scheduler.Setup(600 * time.Second)
	assert.Equal(t, seconds(480, 360, 240, 120), scheduler.Pending())
}

func TestTriggerDrawsUniformlyFromTable(t *testing.T) {
	scheduler, _ := newCountingScheduler(CollapseCrossed)
	counts := map[int]int{}

	for i := 0; i < 5000; i++ {
		counts[scheduler.Trigger().Code]++
	}

	require.Len(t, counts, 5)
	for code := 1; code <= 5; code++ {
		assert.Greater(t, counts[code], 800, "code %d drawn too rarely", code)
	}
}

func TestDefaultTableDurations(t *testing.T) {
	table := DefaultTable()
	require.Len(t, table, 5)
	for index, outcome := range table {
		assert.Equal(t, index+1, outcome.Code)
		assert.NotEmpty(t, outcome.Label)
		assert.GreaterOrEqual(t, outcome.Duration, 10*time.Second)
		assert.LessOrEqual(t, outcome.Duration, 20*time.Second)
	}
}

func TestCurrentFallsBackToIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	scheduler := New(Config{
		Table: []Outcome{{Code: 3, Label: "Got the Zoomies", Duration: 10 * time.Second}},
		Now:   func() time.Time { return now },
	})
	assert.Equal(t, IdleOutcome, scheduler.Current())

	scheduler.Trigger()
	assert.Equal(t, 3, scheduler.Current().Code)

	now = now.Add(10 * time.Second)
	assert.Equal(t, IdleOutcome, scheduler.Current())
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("front_only")
	require.NoError(t, err)
	assert.Equal(t, FrontOnly, policy)

	policy, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, CollapseCrossed, policy)

	_, err = ParsePolicy("sometimes")
	assert.Error(t, err)
	assert.Equal(t, "front_only", FrontOnly.String())
}
