package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/policy"
	"github.com/aitp-mods/answerbot/internal/recency"
	"github.com/aitp-mods/answerbot/internal/store"
	"github.com/aitp-mods/answerbot/internal/sweep"
	"github.com/aitp-mods/answerbot/internal/testutil"
)

// epoch is the fixed scenario start time. Every scenario begins here so
// record ages and golden traces stay reproducible.
var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Harness wires the real store, engine, classifier, and runner to a
// scripted platform client and a deterministic clock.
type Harness struct {
	Client *testutil.FakeClient
	Clock  *testutil.FixedClock
	Store  *store.Store
	Policy *policy.Policy
	Runner *sweep.Runner
}

// New creates a harness with its record store at dbPath and the default
// static policy.
func New(dbPath string) (*Harness, error) {
	pol, err := policy.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	client := testutil.NewFakeClient()
	clock := testutil.NewFixedClock(epoch)
	cache := recency.New(recency.DefaultCapacity)

	return &Harness{
		Client: client,
		Clock:  clock,
		Store:  st,
		Policy: pol,
		Runner: sweep.NewRunner(client, st, cache, pol, clock),
	}, nil
}

// Close releases the underlying store.
func (h *Harness) Close() error {
	return h.Store.Close()
}

// Execute runs a scenario's timeline. The remote config document, when
// present, is installed on the scripted wiki page before the first step.
func (h *Harness) Execute(ctx context.Context, sc *Scenario) error {
	if sc.RemoteConfig != "" {
		h.Client.WikiPages[h.Policy.ConfigWikiPage] = sc.RemoteConfig
	}

	for i, step := range sc.Steps {
		if err := h.executeStep(ctx, step); err != nil {
			return fmt.Errorf("scenario %s: step %d: %w", sc.Name, i, err)
		}
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, step Step) error {
	switch {
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("bad advance duration %q: %w", step.Advance, err)
		}
		h.Clock.Advance(d)
		return nil

	case step.Submit != nil:
		return h.addSubmission(step.Submit)

	case step.Message != nil:
		h.addMessage(step.Message)
		return nil

	case step.Cycle:
		return h.Runner.Cycle(ctx)

	default:
		return errors.New("empty step")
	}
}

func (h *Harness) addSubmission(s *SubmitStep) error {
	created := h.Clock.Now()
	if s.AgedBy != "" {
		d, err := time.ParseDuration(s.AgedBy)
		if err != nil {
			return fmt.Errorf("bad aged_by duration %q: %w", s.AgedBy, err)
		}
		created = created.Add(-d)
	}

	sub := platform.Submission{
		ID:            s.ID,
		Author:        s.User,
		Title:         s.Title,
		Permalink:     "/r/" + h.Policy.Community + "/comments/" + s.ID,
		CreatedAt:     created,
		Distinguished: s.Distinguished,
		Approved:      s.Approved,
		ReportCount:   s.Reports,
	}

	// Newest first, matching the platform's new listing order.
	h.Client.Submissions = append([]platform.Submission{sub}, h.Client.Submissions...)
	if s.Approved {
		h.Client.Approved[s.ID] = true
	}
	if s.Reports > 0 {
		h.Client.Reports[s.ID] = s.Reports
	}
	h.Client.UserPosts[s.User] = append(h.Client.UserPosts[s.User], sub)
	return nil
}

func (h *Harness) addMessage(m *MessageStep) {
	subject := m.Subject
	if subject == "" {
		subject = "re: " + h.Policy.Messages.PromptSubject
	}
	h.Client.Inbox = append(h.Client.Inbox, platform.Message{
		ID:        m.ID,
		Author:    m.User,
		Subject:   subject,
		Body:      m.Body,
		CreatedAt: h.Clock.Now(),
	})
}

// Verify checks a scenario's assertions against final state and returns
// one error per failed assertion.
func (h *Harness) Verify(ctx context.Context, sc *Scenario) []error {
	var failures []error
	for i, a := range sc.Assertions {
		if err := h.verifyOne(ctx, a); err != nil {
			failures = append(failures, fmt.Errorf("assertion %d (%s): %w", i, a.Type, err))
		}
	}
	return failures
}

func (h *Harness) verifyOne(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertRecordPresent:
		rec, err := h.Store.FindByPostID(ctx, a.PostID)
		if err != nil {
			return fmt.Errorf("record for %s: %w", a.PostID, err)
		}
		if a.Prompted != nil && rec.Prompted != *a.Prompted {
			return fmt.Errorf("prompted = %v, want %v", rec.Prompted, *a.Prompted)
		}
		if a.Removed != nil && rec.Removed != *a.Removed {
			return fmt.Errorf("removed = %v, want %v", rec.Removed, *a.Removed)
		}
		if a.Replied != nil && rec.Replied != *a.Replied {
			return fmt.Errorf("replied = %v, want %v", rec.Replied, *a.Replied)
		}
		return nil

	case AssertRecordAbsent:
		_, err := h.Store.FindByPostID(ctx, a.PostID)
		if err == nil {
			return fmt.Errorf("record for %s still present", a.PostID)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil

	case AssertApproved:
		if !h.Client.Approved[a.PostID] {
			return fmt.Errorf("submission %s not approved", a.PostID)
		}
		return nil

	case AssertRemoved:
		if !h.Client.Removed[a.PostID] {
			return fmt.Errorf("submission %s not removed", a.PostID)
		}
		return nil

	case AssertStickyContains:
		body, ok := h.Client.Stickies[a.PostID]
		if !ok {
			return fmt.Errorf("no sticky posted on %s", a.PostID)
		}
		if !strings.Contains(body, a.Text) {
			return fmt.Errorf("sticky on %s does not contain %q", a.PostID, a.Text)
		}
		return nil

	case AssertMessageSent:
		subject, err := h.subjectFor(a.MessageKind)
		if err != nil {
			return err
		}
		count := 0
		for _, call := range h.Client.Sent {
			if call.Args[0] == a.User && call.Args[1] == subject {
				count++
			}
		}
		if count != a.Count {
			return fmt.Errorf("%d %s messages sent to %s, want %d", count, a.MessageKind, a.User, a.Count)
		}
		return nil

	case AssertReadCount:
		if got := h.Client.ReadCount[a.MessageID]; got != a.Count {
			return fmt.Errorf("message %s marked read %d times, want %d", a.MessageID, got, a.Count)
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) subjectFor(kind string) (string, error) {
	msgs := h.Policy.Messages
	switch kind {
	case "prompt":
		return msgs.PromptSubject, nil
	case "retry":
		return msgs.RetrySubject, nil
	case "timeout":
		return msgs.TimeoutSubject, nil
	default:
		return "", fmt.Errorf("unknown message_kind %q", kind)
	}
}
