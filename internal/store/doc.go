// Package store provides SQLite-backed durable storage for per-submission
// lifecycle records.
//
// The store holds exactly one table, posts, with one row per tracked
// submission. The row is the authoritative lifecycle state; the recency
// cache in internal/recency is only an optimization layered above it.
//
// # Critical Patterns
//
//   - post_id carries a UNIQUE constraint. Inserts use ON CONFLICT DO
//     NOTHING so a re-admitted submission (mid-cycle crash, retried
//     cycle) never produces a second row or an error.
//   - The engine, not the store, enforces "at most one live record per
//     author": admission deletes the author's prior rows before insert.
//   - Updates address rows by their internal row id, mirroring how the
//     lifecycle engine carries records it read earlier in the cycle.
//   - Zero-rows-affected on update or delete is reported to the caller,
//     which logs and continues; the next cycle re-reads the table.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
