// Package engine drives hold-note judging one frame at a time.
//
// ARCHITECTURE:
//
// Single-Writer Frame Loop:
// The caller owns the clock and hands the engine one frame at a time through
// Advance (forward) or RewindTo (backward). Nothing runs in the background.
// Each frame completes before the next is accepted, so the same frames always
// produce the same judgement stream.
//
// Forward frame, per live note in start-time order:
//  1. Tracking is recomputed from cursor, pressed actions and key lock
//  2. The head is judged from new presses or timed out, then late-hit
//     catch-up runs if it was hit
//  3. Ticks and the tail whose time has come are judged from tracking
//  4. The note-level result is judged once everything nested is
//
// Every result passes through the combo processor, which stamps the combo
// quality before and after, and is then appended to the stream.
//
// Rewind:
// Results judged after the rewind target are reverted newest first, each
// restoring the combo quality it recorded. Tracking is restored from each
// note's history rather than recomputed.
//
// Failure:
// Gameplay outcomes are never errors. An *ir.InvariantError means the frame
// contract was broken or state is corrupt; the engine halts and refuses
// further frames until Reset.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Results and reverts are stamped with seq numbers from Clock.Next().
// NEVER use wall-clock timestamps for ordering.
package engine
