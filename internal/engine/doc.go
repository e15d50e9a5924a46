// Package engine implements the submission lifecycle decision logic.
//
// The engine is pure: given a submission, its stored record (if any),
// the current tunables, and the current time, it returns a decision
// describing what the scheduler should do. No I/O happens here - the
// sweep scheduler owns every platform and store call. That split keeps
// the timing windows and idempotency rules testable without a fake
// platform.
//
// # Invariants
//
//   - Admission is idempotent: a submission admitted twice produces one
//     record, and the prompted flag ensures at most one prompt is sent.
//   - At most one live record per author: admission of a new submission
//     orders the deletion of the author's prior records first.
//   - removed transitions false→true at most once; a record already
//     marked removed is never removed again.
//   - Pruning applies regardless of other flags: the prune age is a hard
//     upper bound on record lifetime.
package engine
