// Package harness runs hold-judging scenarios against the real engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: released_before_tail
//	description: "Hold released 100ms before the tail"
//	beatmap: ../beatmaps/two_second_hold.cue
//	session_id: golden-session
//	frame_step: 10
//	from: 900
//	to: 3100
//	input:
//	  - at: 900
//	    cursor: { x: 256, y: 192 }
//	  - at: 1050
//	    keys: [primary]
//	  - at: 2900
//	    keys: []
//	rewinds:
//	  - after: 2500
//	    to: 2000
//	assertions:
//	  - type: result
//	    note: 0
//	    kind: head
//	    expect: ok
//	    hit_action: primary
//	  - type: tracking_at
//	    note: 0
//	    at: 2950
//	    tracking: false
//
// Each keyframe holds until the next one. A keyframe without a cursor keeps
// the previous cursor; a keyframe without keys releases everything. The
// beatmap path is relative to the scenario file.
//
// # Assertion Types
//
//   - result: the live result of one object has the expected type
//   - tracking_at: a note's recorded tracking value at a time
//   - combo: the combo quality after the last frame
//   - result_count: number of live results
//   - revert_count: number of reverts persisted for the session
//
// # Deterministic Testing
//
// Result IDs are scoped to the session, so scenarios run under a fixed
// session ID (session_id, or testutil.DefaultSessionID) and in a fresh
// in-memory store unless the caller supplies one. Identical scenarios give
// byte-identical traces, which RunWithGolden compares with goldie.
package harness
