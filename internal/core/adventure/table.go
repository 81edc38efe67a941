package adventure

import "time"

// EffectKind names the visual behaviour of an adventure.
type EffectKind string

const (
	EffectNone     EffectKind = "none"
	EffectVanish   EffectKind = "vanish"
	EffectJiggle   EffectKind = "jiggle"
	EffectZoomies  EffectKind = "zoomies"
	EffectSpin     EffectKind = "spin"
	EffectSunbathe EffectKind = "sunbathe"
)

// Pose is the companion transform applied by the presentation layer.
type Pose struct {
	Opacity  float64
	Scale    float64
	OffsetX  float64
	OffsetY  float64
	Rotation float64
}

// NeutralPose returns the resting companion pose.
func NeutralPose() Pose {
	return Pose{Opacity: 1, Scale: 1}
}

// Effect describes a pose timeline: Frames are applied in order, Step apart,
// and the whole cycle repeats Repeats times.
type Effect struct {
	Kind    EffectKind
	Frames  []Pose
	Step    time.Duration
	Repeats int
}

// Outcome is one row of the adventure table.
type Outcome struct {
	Code     int
	Label    string
	Effect   Effect
	Duration time.Duration
}

// IdleOutcome is shown whenever no adventure is playing.
var IdleOutcome = Outcome{
	Code:   0,
	Label:  "Sleeping Currently...",
	Effect: Effect{Kind: EffectNone},
}

// DefaultTable returns the five stock adventures.
func DefaultTable() []Outcome {
	return []Outcome{
		{
			Code:  1,
			Label: "Felt Magical and disappeared for a bit",
			Effect: Effect{
				Kind:    EffectVanish,
				Frames:  []Pose{{Opacity: 0, Scale: 1}},
				Step:    10 * time.Second,
				Repeats: 1,
			},
			Duration: 10 * time.Second,
		},
		{
			Code:  2,
			Label: "Ate a Jiggly Jelly Bean",
			Effect: Effect{
				Kind:    EffectJiggle,
				Frames:  []Pose{{Opacity: 1, Scale: 0.7}, {Opacity: 1, Scale: 1}},
				Step:    250 * time.Millisecond,
				Repeats: 5,
			},
			Duration: 10 * time.Second,
		},
		{
			Code:  3,
			Label: "Got the Zoomies",
			Effect: Effect{
				Kind:    EffectZoomies,
				Frames:  []Pose{{Opacity: 1, Scale: 1, OffsetX: -250}, {Opacity: 1, Scale: 1, OffsetX: 250}},
				Step:    200 * time.Millisecond,
				Repeats: 10,
			},
			Duration: 10 * time.Second,
		},
		{
			Code:  4,
			Label: "Started Going Crazy!",
			Effect: Effect{
				Kind: EffectSpin,
				Frames: []Pose{
					{Opacity: 1, Scale: 1, OffsetX: 15, OffsetY: 15, Rotation: 360},
					{Opacity: 1, Scale: 1, OffsetX: -15, OffsetY: -15, Rotation: 720},
				},
				Step:    time.Second,
				Repeats: 10,
			},
			Duration: 20 * time.Second,
		},
		{
			Code:     5,
			Label:    "Started Sunbathing!",
			Effect:   Effect{Kind: EffectSunbathe},
			Duration: 15 * time.Second,
		},
	}
}
