package timing

import "fmt"

// Defaults applied when a beatmap omits a value.
const (
	DefaultCircleSize        = 5.0
	DefaultOverallDifficulty = 5.0
	DefaultTickRate          = 1.0
)

// ObjectRadius is the radius of a hit object at scale 1.
const ObjectRadius = 64.0

// Difficulty holds the beatmap difficulty parameters the judging core reads.
type Difficulty struct {
	CircleSize        float64 `json:"circle_size" yaml:"circle_size"`
	OverallDifficulty float64 `json:"overall_difficulty" yaml:"overall_difficulty"`
	TickRate          float64 `json:"tick_rate" yaml:"tick_rate"`
}

// DefaultDifficulty returns the values used by an empty beatmap.
func DefaultDifficulty() Difficulty {
	return Difficulty{
		CircleSize:        DefaultCircleSize,
		OverallDifficulty: DefaultOverallDifficulty,
		TickRate:          DefaultTickRate,
	}
}

// Validate checks the ranges the game editor allows.
func (d Difficulty) Validate() error {
	if d.CircleSize < 0 || d.CircleSize > 10 {
		return fmt.Errorf("circle_size %v out of range [0, 10]", d.CircleSize)
	}
	if d.OverallDifficulty < 0 || d.OverallDifficulty > 10 {
		return fmt.Errorf("overall_difficulty %v out of range [0, 10]", d.OverallDifficulty)
	}
	if d.TickRate < 0.5 || d.TickRate > 8 {
		return fmt.Errorf("tick_rate %v out of range [0.5, 8]", d.TickRate)
	}
	return nil
}

// Scale is the object scale derived from circle size.
func (d Difficulty) Scale() float64 {
	return (1.0 - 0.7*(d.CircleSize-5)/5) / 2
}

// Radius is the hit radius of a note head in playfield units.
func (d Difficulty) Radius() float64 {
	return ObjectRadius * d.Scale()
}

// TickInterval is the spacing of hold ticks at time t.
func (d Difficulty) TickInterval(cp *ControlPoints, t float64) float64 {
	return cp.BeatLengthAt(t) / d.TickRate
}

// Range maps a difficulty value onto the (min, mid, max) triple used for
// values at 0, 5 and 10.
func Range(value, lo, mid, hi float64) float64 {
	switch {
	case value > 5:
		return mid + (hi-mid)*(value-5)/5
	case value < 5:
		return mid - (mid-lo)*(5-value)/5
	}
	return mid
}
