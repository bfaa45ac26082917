// Package timing supplies the beatmap timing context the hold judging core
// consumes: beat length at a time, tick rate, radius and hit windows.
package timing

import (
	"math"
	"slices"
)

// DefaultBeatLength is used when a beatmap has no timing points (60 BPM).
const DefaultBeatLength = 1000.0

// TimingPoint is an uninherited timing point. Inherited points (negative
// beat length, which only scale slider velocity) are not stored.
type TimingPoint struct {
	Time       float64 `json:"time" yaml:"time"`
	BeatLength float64 `json:"beat_length" yaml:"beat_length"`
}

// ControlPoints is the time-sorted set of timing points of a beatmap.
type ControlPoints struct {
	points []TimingPoint
}

// NewControlPoints sorts points by time and drops inherited or invalid ones.
// Points sharing a time keep their input order, so the last one wins at lookup.
func NewControlPoints(points ...TimingPoint) *ControlPoints {
	kept := make([]TimingPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.BeatLength) || p.BeatLength <= 0 {
			continue
		}
		kept = append(kept, p)
	}
	slices.SortStableFunc(kept, func(a, b TimingPoint) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return &ControlPoints{points: kept}
}

// Points returns a copy of the stored points.
func (c *ControlPoints) Points() []TimingPoint {
	return slices.Clone(c.points)
}

// BeatLengthAt returns the beat length in effect at t: the last point at or
// before t, or the first point when t precedes all of them.
func (c *ControlPoints) BeatLengthAt(t float64) float64 {
	if c == nil || len(c.points) == 0 {
		return DefaultBeatLength
	}
	// first index with Time > t
	i, _ := slices.BinarySearchFunc(c.points, t, func(p TimingPoint, target float64) int {
		if p.Time <= target {
			return -1
		}
		return 1
	})
	if i == 0 {
		return c.points[0].BeatLength
	}
	return c.points[i-1].BeatLength
}
