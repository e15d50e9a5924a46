package engine

import (
	"strings"
	"time"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/store"
)

// AdmitOutcome is the decision for one new submission.
type AdmitOutcome int

const (
	// AdmitSkip ignores the submission entirely; no record, no prompt,
	// no cache entry side effects beyond what the scheduler chooses.
	AdmitSkip AdmitOutcome = iota + 1

	// AdmitTrack creates a record for a never-before-seen submission.
	// The scheduler first deletes the author's stale records, inserts a
	// fresh record, then sends the prompt and marks it prompted.
	AdmitTrack

	// AdmitPrompt re-sends the prompt for an existing record whose
	// prompted flag is still false (a previous send failed mid-cycle).
	// No record is created.
	AdmitPrompt

	// AdmitSettled acknowledges an existing, already-prompted record.
	// The scheduler caches the submission and moves on.
	AdmitSettled
)

// SkipReason explains an AdmitSkip decision, for logging.
type SkipReason int

const (
	SkipNone SkipReason = iota
	// SkipDistinguished: posted in an official moderator capacity.
	SkipDistinguished
	// SkipApproved: already manually approved by a moderator.
	SkipApproved
	// SkipTooOld: older than the reinstatement window; the author could
	// never answer in time, so prompting would be pointless.
	SkipTooOld
	// SkipBotReplied: the bot already commented on the submission.
	SkipBotReplied
	// SkipUpdateTitle: follow-up posts ("UPDATE: ...") are exempt.
	SkipUpdateTitle
)

// String returns the log label for a skip reason.
func (r SkipReason) String() string {
	switch r {
	case SkipDistinguished:
		return "distinguished"
	case SkipApproved:
		return "approved"
	case SkipTooOld:
		return "too_old"
	case SkipBotReplied:
		return "bot_replied"
	case SkipUpdateTitle:
		return "update_title"
	default:
		return "none"
	}
}

// AdmitDecision is the full outcome of admitting one submission.
type AdmitDecision struct {
	Outcome AdmitOutcome
	Reason  SkipReason // set only for AdmitSkip
}

// Admit decides what to do with a newly fetched submission.
//
// rec is the submission's stored record, or nil when none exists.
// botReplied reports whether the bot already commented on the
// submission; the scheduler resolves it before calling in, and only
// when the cheaper checks have not already skipped the submission.
//
// The guard order mirrors its audit order: platform-state skips first,
// then the age window, then record state. Skipping has no side effects.
func Admit(sub platform.Submission, rec *store.PostRecord, botReplied bool, cfg config.Config, now time.Time) AdmitDecision {
	if sub.Distinguished {
		return AdmitDecision{Outcome: AdmitSkip, Reason: SkipDistinguished}
	}
	if sub.Approved {
		return AdmitDecision{Outcome: AdmitSkip, Reason: SkipApproved}
	}
	if now.Sub(sub.CreatedAt) > cfg.ReinstateWindow {
		return AdmitDecision{Outcome: AdmitSkip, Reason: SkipTooOld}
	}
	if botReplied {
		return AdmitDecision{Outcome: AdmitSkip, Reason: SkipBotReplied}
	}
	if strings.Contains(strings.ToLower(sub.Title), "update") {
		return AdmitDecision{Outcome: AdmitSkip, Reason: SkipUpdateTitle}
	}

	if rec == nil {
		return AdmitDecision{Outcome: AdmitTrack}
	}
	if !rec.Prompted {
		// Retry path: the record exists but the prompt never went out.
		return AdmitDecision{Outcome: AdmitPrompt}
	}
	return AdmitDecision{Outcome: AdmitSettled}
}
