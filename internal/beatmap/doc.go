// Package beatmap loads hold-note beatmaps written in CUE.
//
// A beatmap file is a plain CUE struct unified with the embedded #Beatmap
// schema before anything is read out of it:
//
//	name: "two second hold"
//	difficulty: {circle_size: 5, overall_difficulty: 10, tick_rate: 2}
//	timing: [{time: 0, beat_length: 1000}]
//	holds: [{start: 1000, end: 3000, x: 256, y: 192, new_combo: true}]
//
// Schema violations carry CUE source positions. Range checks that need more
// than one field (end before start) are reported by Validate, which collects
// every problem instead of stopping at the first.
package beatmap
