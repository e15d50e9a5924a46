package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Remote document keys. Matching is case-insensitive and tolerant of
// surrounding markdown: a line matches when its upper-cased form contains
// the key, and the value is everything after the first colon.
const (
	keyRemovalDelay        = "REMOVAL_PERIOD_MINUTES"
	keyReinstateWindow     = "REINSTATE_PERIOD_MINUTES"
	keyBlacklistPhrases    = "REMOVAL_PHRASES"
	keyAnswerMinimum       = "ANSWER_MINIMUM"
	keyAnswerPhraseMinimum = "ANSWER_PHRASE_MINIMUM"
	keyFetchLimit          = "POST_FETCH_LIMIT"
	keyPruneAge            = "POST_DB_PRUNE_MINUTES"
)

// Parse overlays the tunables found in a line-oriented key:value document
// onto prev and returns the result. Each field falls back independently:
// a malformed or absent line leaves that field at its previous value, so
// a half-broken wiki edit can never zero out the whole configuration.
//
// Duration-valued keys are expressed in whole minutes. The phrase list
// uses a bracketed comma-separated sub-syntax:
//
//	REMOVAL_PHRASES: [not sure, no idea, idk]
func Parse(doc string, prev Config) Config {
	cfg := prev

	for _, line := range strings.Split(doc, "\n") {
		upper := strings.ToUpper(line)
		switch {
		// ANSWER_PHRASE_MINIMUM contains ANSWER_MINIMUM as a substring,
		// so the longer key must be tested first.
		case strings.Contains(upper, keyAnswerPhraseMinimum):
			if n, ok := intValue(line); ok {
				cfg.AnswerPhraseMinimum = n
			}
		case strings.Contains(upper, keyAnswerMinimum):
			if n, ok := intValue(line); ok {
				cfg.AnswerMinimum = n
			}
		case strings.Contains(upper, keyRemovalDelay):
			if n, ok := intValue(line); ok {
				cfg.RemovalDelay = time.Duration(n) * time.Minute
			}
		case strings.Contains(upper, keyReinstateWindow):
			if n, ok := intValue(line); ok {
				cfg.ReinstateWindow = time.Duration(n) * time.Minute
			}
		case strings.Contains(upper, keyFetchLimit):
			if n, ok := intValue(line); ok {
				cfg.FetchLimit = n
			}
		case strings.Contains(upper, keyPruneAge):
			if n, ok := intValue(line); ok {
				cfg.PruneAge = time.Duration(n) * time.Minute
			}
		case strings.Contains(upper, keyBlacklistPhrases):
			if phrases, ok := listValue(line); ok {
				cfg.BlacklistPhrases = phrases
			}
		}
	}

	return cfg
}

// intValue extracts the integer after the first colon.
func intValue(line string) (int, bool) {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		slog.Warn("config line has non-numeric value, keeping previous",
			"line", strings.TrimSpace(line),
			"error", err,
		)
		return 0, false
	}
	return n, true
}

// listValue extracts the bracketed comma-separated list after the first
// colon. An empty bracket pair yields an empty (non-nil) list, which
// deliberately clears the previous phrases.
func listValue(line string) ([]string, bool) {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return nil, false
	}
	_, rest, ok = strings.Cut(rest, "[")
	if !ok {
		return nil, false
	}
	body, _, ok := strings.Cut(rest, "]")
	if !ok {
		return nil, false
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return []string{}, true
	}

	parts := strings.Split(body, ",")
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases, true
}
