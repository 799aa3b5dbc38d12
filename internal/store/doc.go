// Package store provides SQLite-backed storage for tasks and graded
// submissions.
//
// Submissions are append-only. Each row keeps the submitted automaton in
// its editor JSON form, the content hashes of the automaton and of the
// script it was graded against, the master seed and profile, and the
// verdict, so any stored verdict can be re-derived and its first failing
// case replayed.
//
// # Ordering
//
// Listings order by submitted_at ASC, id ASC COLLATE BINARY. Timestamps
// come from an injectable Clock and IDs from an injectable IDGenerator
// (UUIDv7 by default), so tests produce identical rows on every run.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Submissions must reference a stored task
package store
