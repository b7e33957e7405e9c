package game

// Tier is the pace for one stretch of a run.
type Tier struct {
	Level       int
	MinDistance float64 // distance at which the tier starts
	RunnerSpeed float64 // units/s
	ThinkTime   float64 // autopilot reaction at junctions, seconds
}

// tierSteps are the hand-tuned first tiers as fractions of the speed
// range; beyond the last one the runner holds its max speed.
var tierSteps = []struct {
	distance float64
	share    float64
	think    float64
}{
	{0, 0, AutopilotMaxThink},
	{600, 0.15, 0.5},
	{1500, 0.3, 0.4},
	{3000, 0.5, 0.3},
	{5000, 0.7, 0.25},
	{8000, 0.85, 0.2},
	{12000, 1, AutopilotMinThink},
}

// TierFor returns the tier for the distance covered so far. Speeds
// interpolate between base and max.
func TierFor(distance, base, max float64) Tier {
	if max < base {
		max = base
	}
	idx := 0
	for i, s := range tierSteps {
		if distance >= s.distance {
			idx = i
		}
	}
	s := tierSteps[idx]
	return Tier{
		Level:       idx + 1,
		MinDistance: s.distance,
		RunnerSpeed: base + (max-base)*s.share,
		ThinkTime:   s.think,
	}
}
