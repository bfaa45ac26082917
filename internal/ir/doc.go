// Package ir provides the value types shared by every holdjudge package.
//
// ir imports nothing internal. Gameplay code keeps times as float64
// milliseconds; anything that is hashed or persisted goes through the
// canonical encoding, which carries times as integer microseconds.
//
// Key constraints:
//   - NO floats in canonical JSON, convert with Micros first
//   - All JSON tags and enum names use snake_case
//   - Logical clocks (seq) order results, never wall-clock timestamps
package ir
