package inbox

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/store"
)

var (
	recCreated = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	classifyAt = recCreated.Add(time.Hour)
)

// goodAnswer clears both length heuristics with room to spare.
var goodAnswer = strings.Repeat("I was wrong to do it. ", 5)

func messageAt(delta time.Duration, body string) platform.Message {
	return platform.Message{
		ID:        "m1",
		Author:    "alice",
		Subject:   "re: prompt",
		Body:      body,
		CreatedAt: recCreated.Add(delta),
	}
}

func liveRecord() *store.PostRecord {
	return &store.PostRecord{
		RowID:     1,
		PostID:    "s1",
		User:      "alice",
		CreatedAt: recCreated,
		Prompted:  true,
		Removed:   true,
	}
}

func TestClassify_NoRecord(t *testing.T) {
	cfg := config.Defaults()
	msg := messageAt(5*time.Minute, goodAnswer)

	tests := []struct {
		name   string
		facts  Facts
		kind   Kind
		reason string
	}{
		{
			name:  "prompt reply with no workflow left times out",
			facts: Facts{SubjectMatchesPrompt: true},
			kind:  Timeout,
		},
		{
			name:   "approved post means the workflow completed",
			facts:  Facts{SubjectMatchesPrompt: true, HasApprovedPost: true},
			kind:   Ignore,
			reason: ReasonUnmapped,
		},
		{
			name:   "live recent post means the reply is stale mail",
			facts:  Facts{SubjectMatchesPrompt: true, HasRecentPost: true},
			kind:   Ignore,
			reason: ReasonUnrelated,
		},
		{
			name:   "unrelated mail",
			facts:  Facts{},
			kind:   Ignore,
			reason: ReasonUnmapped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(msg, nil, tt.facts, cfg, classifyAt)

			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.reason, d.Reason)
			assert.False(t, d.Publish)
		})
	}
}

// Delta is measured from submission creation to the reply, not to the
// cycle that drains the inbox: a reply written in time still counts
// even when it sat unread past the window.
func TestClassify_DeltaFromMessageCreation(t *testing.T) {
	cfg := config.Defaults()
	msg := messageAt(20*time.Minute, goodAnswer)

	// Classified well after the window expired.
	d := Classify(msg, liveRecord(), Facts{}, cfg, classifyAt)

	assert.Equal(t, Accept, d.Kind)
	assert.Equal(t, 20*time.Minute, d.Delta)
	assert.True(t, d.Publish)
}

func TestClassify_WindowBoundary(t *testing.T) {
	cfg := config.Defaults()

	// Exactly at the window: timed out (the bound is exclusive).
	d := Classify(messageAt(cfg.ReinstateWindow, goodAnswer), liveRecord(), Facts{}, cfg, classifyAt)
	assert.Equal(t, Timeout, d.Kind)
	assert.Equal(t, cfg.ReinstateWindow, d.Delta)

	// One second inside: still accepted.
	d = Classify(messageAt(cfg.ReinstateWindow-time.Second, goodAnswer), liveRecord(), Facts{}, cfg, classifyAt)
	assert.Equal(t, Accept, d.Kind)
}

// A record already marked replied is past its reinstatement; late
// follow-up mail must not draw a second timeout notice.
func TestClassify_RepliedRecordSkipsTimeout(t *testing.T) {
	cfg := config.Defaults()
	rec := liveRecord()
	rec.Replied = true

	d := Classify(messageAt(45*time.Minute, goodAnswer), rec, Facts{}, cfg, classifyAt)

	assert.Equal(t, Accept, d.Kind)
	assert.False(t, d.Publish, "outside the window, nothing is re-published")
}

func TestClassify_AnswerHeuristics(t *testing.T) {
	cfg := config.Defaults()
	cfg.BlacklistPhrases = []string{"not sure", "idk"}

	tests := []struct {
		name string
		body string
		kind Kind
	}{
		{
			name: "below the length minimum",
			body: "idk maybe",
			kind: Retry,
		},
		{
			name: "short answer with a blacklisted phrase",
			body: "I am honestly not sure what I did wrong here",
			kind: Retry,
		},
		{
			name: "blacklist is case-folded",
			body: "I am honestly NOT SURE what I did wrong here",
			kind: Retry,
		},
		{
			name: "short answer without a phrase",
			body: "I yelled at my roommate over the dishes.",
			kind: Accept,
		},
		{
			name: "long answer skips the phrase check",
			body: "I am not sure how to phrase this, but I did take the money from our shared account without telling my partner first.",
			kind: Accept,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(messageAt(5*time.Minute, tt.body), liveRecord(), Facts{}, cfg, classifyAt)

			assert.Equal(t, tt.kind, d.Kind)
		})
	}
}

// Accept publishes only when the submission was actually removed in
// time; a pre-emptive answer completes the workflow silently.
func TestClassify_PublishRequiresRemoval(t *testing.T) {
	cfg := config.Defaults()
	rec := liveRecord()
	rec.Removed = false

	d := Classify(messageAt(5*time.Minute, goodAnswer), rec, Facts{}, cfg, classifyAt)

	assert.Equal(t, Accept, d.Kind)
	assert.False(t, d.Publish)
}

func TestSubjectMatches(t *testing.T) {
	prompt := "Your post won't be posted until you respond."
	retry := "Your submission hasn't been posted, please try again."

	assert.True(t, SubjectMatches("re: "+prompt, prompt, retry))
	assert.True(t, SubjectMatches(retry, prompt, retry))
	assert.False(t, SubjectMatches("completely unrelated", prompt, retry))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ignore", Ignore.String())
	assert.Equal(t, "timeout", Timeout.String())
	assert.Equal(t, "retry", Retry.String())
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
