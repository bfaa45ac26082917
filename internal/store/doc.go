// Package store provides SQLite-backed storage for recorded gameplay sessions.
//
// A session is the beatmap it was played on plus an append-only log of:
//   - Frames: every input step fed to the engine, rewinds included
//   - Results: every judgement result emitted, reverted or not
//   - Reverts: which results a rewind undid, and when
//
// # Patterns
//
// Logical ordering:
//   - Results and reverts share the engine's seq counter
//   - All reads ORDER BY seq (or step), never by insertion time
//
// Integer storage:
//   - Times are stored as microseconds, positions as thousandths
//   - Reading back yields the same canonical trace the engine produced
//
// Idempotent writes:
//   - Result IDs are content-addressed, so ON CONFLICT(id) DO NOTHING makes
//     re-recording a replay harmless
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
