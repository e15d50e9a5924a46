package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aitp-mods/answerbot/internal/platform"
)

// Call is one recorded platform operation, for trace assertions.
type Call struct {
	Op   string
	Args []string
}

// String renders a call as "op(arg1, arg2)" for golden traces.
func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(c.Args, ", "))
}

// FakeClient is a scripted, in-memory platform.Client.
//
// Tests populate the public fields to script platform state, run the
// code under test, and assert on the recorded Trace and the mutated
// state. Per-op failures are injected through FailOps; SendErrs injects
// per-user message-send failures (a user who blocked the bot).
type FakeClient struct {
	mu sync.Mutex

	// Scripted state.
	Submissions []platform.Submission              // ListNew results, most recent first
	Inbox       []platform.Message                 // unread messages
	UserPosts   map[string][]platform.Submission   // RecentByUser results
	BotReplies  map[string]bool                    // submission id -> bot already commented
	Approved    map[string]bool                    // submission id -> approved
	Reports     map[string]int                     // submission id -> held report count
	WikiPages   map[string]string                  // page name -> markdown body
	FailOps     map[string]error                   // op name -> injected error
	SendErrs    map[string]error                   // user -> SendMessage error

	// Recorded outcomes.
	Trace     []Call
	ReadCount map[string]int // message id -> times marked read
	Removed   map[string]bool
	Stickies  map[string]string // submission id -> posted sticky body
	Sent      []Call            // SendMessage calls only, for convenience
}

var _ platform.Client = (*FakeClient)(nil)

// NewFakeClient creates an empty fake with all maps initialized.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		UserPosts: make(map[string][]platform.Submission),
		BotReplies: make(map[string]bool),
		Approved:  make(map[string]bool),
		Reports:   make(map[string]int),
		WikiPages: make(map[string]string),
		FailOps:   make(map[string]error),
		SendErrs:  make(map[string]error),
		ReadCount: make(map[string]int),
		Removed:   make(map[string]bool),
		Stickies:  make(map[string]string),
	}
}

// record appends a trace entry and returns any injected failure for op.
func (f *FakeClient) record(op string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Trace = append(f.Trace, Call{Op: op, Args: args})
	return f.FailOps[op]
}

// Calls returns the recorded calls for one op, in order.
func (f *FakeClient) Calls(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Trace {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// TraceStrings renders the full trace for golden comparison.
func (f *FakeClient) TraceStrings() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Trace))
	for i, c := range f.Trace {
		out[i] = c.String()
	}
	return out
}

func (f *FakeClient) ListNew(ctx context.Context, limit int) ([]platform.Submission, error) {
	if err := f.record("list_new"); err != nil {
		return nil, err
	}
	if limit > len(f.Submissions) {
		limit = len(f.Submissions)
	}
	return append([]platform.Submission(nil), f.Submissions[:limit]...), nil
}

func (f *FakeClient) HasBotReply(ctx context.Context, submissionID string) (bool, error) {
	if err := f.record("has_bot_reply", submissionID); err != nil {
		return false, err
	}
	return f.BotReplies[submissionID], nil
}

func (f *FakeClient) Approve(ctx context.Context, submissionID string) error {
	if err := f.record("approve", submissionID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Approved[submissionID] = true
	return nil
}

func (f *FakeClient) Remove(ctx context.Context, submissionID string) error {
	if err := f.record("remove", submissionID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removed[submissionID] = true
	return nil
}

func (f *FakeClient) Report(ctx context.Context, submissionID, reason string) error {
	return f.record("report", submissionID, reason)
}

func (f *FakeClient) StickyReply(ctx context.Context, submissionID, body string) error {
	if err := f.record("sticky_reply", submissionID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stickies[submissionID] = body
	return nil
}

func (f *FakeClient) SendMessage(ctx context.Context, user, subject, body string) error {
	if err := f.record("send_message", user, subject); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SendErrs[user]; err != nil {
		return err
	}
	f.Sent = append(f.Sent, Call{Op: "send_message", Args: []string{user, subject, body}})
	return nil
}

func (f *FakeClient) UnreadInbox(ctx context.Context) ([]platform.Message, error) {
	if err := f.record("unread_inbox"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Message(nil), f.Inbox...), nil
}

func (f *FakeClient) MarkRead(ctx context.Context, messageID string) error {
	if err := f.record("mark_read", messageID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadCount[messageID]++
	// Drop the message so the next cycle's drain does not see it again,
	// matching the platform's unread semantics.
	for i, m := range f.Inbox {
		if m.ID == messageID {
			f.Inbox = append(f.Inbox[:i], f.Inbox[i+1:]...)
			break
		}
	}
	return nil
}

func (f *FakeClient) RecentByUser(ctx context.Context, user string, limit int) ([]platform.Submission, error) {
	if err := f.record("recent_by_user", user); err != nil {
		return nil, err
	}
	posts := f.UserPosts[user]
	if limit > len(posts) {
		limit = len(posts)
	}
	return append([]platform.Submission(nil), posts[:limit]...), nil
}

func (f *FakeClient) IsApproved(ctx context.Context, submissionID string) (bool, error) {
	if err := f.record("is_approved", submissionID); err != nil {
		return false, err
	}
	return f.Approved[submissionID], nil
}

func (f *FakeClient) ReportCount(ctx context.Context, submissionID string) (int, error) {
	if err := f.record("report_count", submissionID); err != nil {
		return 0, err
	}
	return f.Reports[submissionID], nil
}

func (f *FakeClient) WikiPage(ctx context.Context, name string) (string, error) {
	if err := f.record("wiki_page", name); err != nil {
		return "", err
	}
	doc, ok := f.WikiPages[name]
	if !ok {
		return "", fmt.Errorf("wiki page %s not found", name)
	}
	return doc, nil
}
