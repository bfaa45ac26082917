package ir

import (
	"fmt"
	"math"
)

// Vector2 is a playfield position in osu!pixels.
type Vector2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// LengthSquared avoids the square root for radius comparisons.
func (v Vector2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// Micros converts a millisecond time to integer microseconds for canonical encoding.
func Micros(ms float64) int64 {
	return int64(math.Round(ms * 1000))
}

// FromMicros is the inverse of Micros.
func FromMicros(us int64) float64 {
	return float64(us) / 1000
}
