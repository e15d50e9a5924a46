// Package inbox classifies inbound private messages into workflow
// dispositions.
//
// Classification is a pure ordered guard chain over precomputed inputs.
// The scheduler gathers any platform-side facts (fallback history
// checks) before calling in, so every branch here is testable without
// I/O. Each message resolves to exactly one Disposition, and the
// scheduler marks the message read exactly once regardless of which.
package inbox

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/store"
)

// Kind is the classifier's decision for one inbox message.
type Kind int

const (
	// Ignore discards the message: it cannot be mapped to any workflow,
	// or it predates the record store. Mark read, nothing else.
	Ignore Kind = iota + 1

	// Timeout means the answer arrived outside the reinstatement
	// window (or the record is gone and the fallback checks failed).
	// Send the timeout notice; the record, if any, is left for pruning.
	Timeout

	// Retry means the answer failed the length or phrase heuristics.
	// Send the re-prompt; the record is untouched and the author may
	// answer again without penalty.
	Retry

	// Accept means the answer qualifies. Publish the sticky comment and
	// reinstate the submission when it was removed in time, then delete
	// the record - the workflow for that submission is complete.
	Accept
)

// String returns the log label for a disposition kind.
func (k Kind) String() string {
	switch k {
	case Ignore:
		return "ignore"
	case Timeout:
		return "timeout"
	case Retry:
		return "retry"
	case Accept:
		return "accept"
	default:
		return "unknown"
	}
}

// Ignore sub-reasons, for logging only.
const (
	ReasonUnrelated = "unrelated_message" // author has a live recent post; message predates the store
	ReasonUnmapped  = "no_workflow"       // author cannot be mapped to any workflow
)

// Disposition is the classifier's full decision.
type Disposition struct {
	Kind Kind

	// Reason refines Ignore for log lines; empty otherwise.
	Reason string

	// Delta is the author's true response latency: the time between
	// submission creation and the reply. Valid only when a record
	// exists; infinite (treated as expired) otherwise.
	Delta time.Duration

	// Publish reports, for Accept, whether the sticky comment and
	// approval should actually go out. False when the submission was
	// never removed (answered pre-emptively): the record is still
	// deleted but nothing is posted.
	Publish bool
}

// Facts are the platform-side inputs for messages without a record.
// The scheduler computes them lazily - only when no record exists -
// because both require platform calls.
type Facts struct {
	// SubjectMatchesPrompt reports whether the message subject contains
	// the prompt or retry subject, i.e. the message is a reply to this
	// workflow rather than unrelated mail.
	SubjectMatchesPrompt bool

	// HasApprovedPost reports whether the author already has an
	// approved submission (the workflow completed; record loss is
	// benign).
	HasApprovedPost bool

	// HasRecentPost reports whether the author has another qualifying
	// submission inside the reinstatement window (fallback against
	// record loss).
	HasRecentPost bool
}

// Classify maps one inbox message to its disposition.
//
// rec is the author's live record, or nil. The guard order is the audit
// order: record-less timeouts and ignores first, then the in-window
// timeout, then the answer heuristics.
//
// Known limitation: a late reply from an author whose record was already
// deleted (answered or pruned) classifies as Timeout even if the author
// is replying to a stale copy of an earlier prompt. Record-based rather
// than thread-based tracking cannot distinguish the two.
func Classify(msg platform.Message, rec *store.PostRecord, facts Facts, cfg config.Config, now time.Time) Disposition {
	if rec == nil {
		switch {
		case facts.SubjectMatchesPrompt && !facts.HasApprovedPost && !facts.HasRecentPost:
			// Record lost or pruned, and nothing suggests the workflow
			// completed: the answer is too late.
			return Disposition{Kind: Timeout}
		case facts.HasRecentPost:
			return Disposition{Kind: Ignore, Reason: ReasonUnrelated}
		default:
			return Disposition{Kind: Ignore, Reason: ReasonUnmapped}
		}
	}

	// True response latency: elapsed time between submission creation
	// and the reply, independent of how long the message sat unread.
	delta := msg.CreatedAt.Sub(rec.CreatedAt)

	if delta >= cfg.ReinstateWindow && !rec.Replied {
		return Disposition{Kind: Timeout, Delta: delta}
	}

	answer := msg.Body
	if len(answer) < cfg.AnswerMinimum {
		return Disposition{Kind: Retry, Delta: delta}
	}
	if len(answer) < cfg.AnswerPhraseMinimum && containsPhrase(answer, cfg.BlacklistPhrases) {
		return Disposition{Kind: Retry, Delta: delta}
	}

	return Disposition{
		Kind:    Accept,
		Delta:   delta,
		Publish: rec.Removed && delta <= cfg.ReinstateWindow,
	}
}

// SubjectMatches reports whether an inbox subject belongs to this
// workflow: it contains the prompt or retry subject line.
func SubjectMatches(subject, promptSubject, retrySubject string) bool {
	return strings.Contains(subject, promptSubject) ||
		strings.Contains(subject, retrySubject)
}

// containsPhrase reports whether the answer contains any blacklisted
// phrase. Matching is a case-folded substring check so "IDK" still
// matches a blacklisted "idk"; folding handles Unicode beyond ASCII.
func containsPhrase(answer string, phrases []string) bool {
	fold := cases.Fold()
	folded := fold.String(answer)
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(folded, fold.String(phrase)) {
			return true
		}
	}
	return false
}
