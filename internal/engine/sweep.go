package engine

import (
	"time"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/store"
)

// SweepDecision is the time-based transition for one stored record
// during a sweep pass.
//
// Remove and Prune are independent: when the removal delay and prune age
// coincide, a record is removed and pruned in the same pass. The
// scheduler applies Remove before Prune so the takedown happens even
// when the record is about to disappear.
type SweepDecision struct {
	// Remove orders the submission taken down and the record's removed
	// flag set. Only ever true for records not yet removed.
	Remove bool

	// Prune orders the record deleted from the store regardless of its
	// other flags. Hard upper bound preventing unbounded table growth
	// and abandoned-record leaks.
	Prune bool
}

// SweepRecord evaluates one record's time-based transitions.
// Records are independent; the scheduler calls this once per record per
// cycle in row order.
func SweepRecord(rec store.PostRecord, cfg config.Config, now time.Time) SweepDecision {
	age := rec.Age(now)

	return SweepDecision{
		Remove: age >= cfg.RemovalDelay && !rec.Removed,
		Prune:  age >= cfg.PruneAge,
	}
}
