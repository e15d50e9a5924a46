// Package sweep runs the polling cycle that drives the whole workflow.
//
// One cycle is single-threaded and run-to-completion:
//
//	reload config → fetch new submissions → admit each →
//	sweep stored records → drain unread inbox → done
//
// Within a cycle, admission happens-before the record sweep
// happens-before the inbox drain. Across cycles nothing is ordered
// relative to platform-side events; time-based decisions re-check
// platform flags each cycle to tolerate racing moderator actions.
//
// Transient platform failures (ServerError) abort the cycle immediately
// and propagate to the outer run loop, which backs off and restarts the
// cycle from the top. Partial progress is not rolled back; admission and
// message handling are idempotent, so re-running the cycle is safe.
// Every other failure is logged and the cycle continues.
package sweep
