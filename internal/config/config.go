// Package config holds the workflow tunables.
//
// A Config is an immutable snapshot: the scheduler takes one by value at
// the start of each cycle and threads it into the lifecycle engine and
// the inbox classifier. Reloading produces a new value; nothing mutates
// a shared Config.
package config

import "time"

// Config is one snapshot of the workflow tunables.
type Config struct {
	// RemovalDelay is how long an unanswered submission may stand before
	// it is taken down pending a response. The shipped default is zero
	// (removal on the first sweep after admission); deployments tune it
	// via the remote document.
	RemovalDelay time.Duration

	// ReinstateWindow is the maximum allowed time between submission
	// creation and an accepted, complete answer. Replies landing outside
	// it are timed out even when otherwise valid.
	ReinstateWindow time.Duration

	// AnswerMinimum is the minimum answer length in bytes. Shorter
	// answers are re-prompted unconditionally.
	AnswerMinimum int

	// AnswerPhraseMinimum is the length below which an answer is also
	// screened against the phrase blacklist. Answers at or above it skip
	// the phrase check entirely.
	AnswerPhraseMinimum int

	// BlacklistPhrases are case-insensitive substrings that disqualify a
	// short answer (length in [AnswerMinimum, AnswerPhraseMinimum)).
	BlacklistPhrases []string

	// FetchLimit bounds how many new submissions one cycle pulls.
	FetchLimit int

	// PruneAge is the maximum record age before it is deleted from the
	// store regardless of outstanding state.
	PruneAge time.Duration
}

// Defaults returns the built-in tunable values. They apply until a
// remote document is successfully parsed, and individual fields survive
// any malformed or missing lines in that document.
func Defaults() Config {
	return Config{
		RemovalDelay:        0,
		ReinstateWindow:     30 * time.Minute,
		AnswerMinimum:       20,
		AnswerPhraseMinimum: 60,
		BlacklistPhrases:    nil,
		FetchLimit:          500,
		PruneAge:            24 * time.Hour,
	}
}
