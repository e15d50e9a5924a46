// Package platform defines the forum client surface the workflow consumes.
//
// The core never talks to a concrete site directly. It depends on the
// Client interface below, which any platform SDK can satisfy; the
// production implementation lives in internal/reddit and the scripted
// test double in internal/testutil.
package platform

import (
	"context"
	"time"
)

// Submission is a user-authored post to the monitored community.
type Submission struct {
	ID            string
	Author        string
	Title         string
	Permalink     string
	CreatedAt     time.Time
	Distinguished bool // posted in an official moderator capacity
	Approved      bool // already manually approved by a moderator
	ReportCount   int  // outstanding reports held by the platform
}

// Message is one inbound private message.
type Message struct {
	ID        string
	Author    string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// Client is the set of platform capabilities the workflow requires.
//
// Implementations must treat every call as independent: the scheduler
// issues them sequentially from a single goroutine and never cancels
// mid-call. Server-side failures should be returned as *ServerError so
// the outer run loop can distinguish transient faults from bugs.
type Client interface {
	// ListNew returns recent submissions to the monitored community,
	// most recent first, at most limit entries.
	ListNew(ctx context.Context, limit int) ([]Submission, error)

	// HasBotReply reports whether the bot account has already commented
	// on the submission.
	HasBotReply(ctx context.Context, submissionID string) (bool, error)

	// Approve reinstates a removed submission.
	Approve(ctx context.Context, submissionID string) error

	// Remove takes a submission down pending an answer.
	Remove(ctx context.Context, submissionID string) error

	// Report files a moderator-queue flag against a submission.
	Report(ctx context.Context, submissionID, reason string) error

	// StickyReply posts a distinguished, locked comment on a submission.
	StickyReply(ctx context.Context, submissionID, body string) error

	// SendMessage sends a private message to a user.
	SendMessage(ctx context.Context, user, subject, body string) error

	// UnreadInbox returns all unread private messages.
	UnreadInbox(ctx context.Context) ([]Message, error)

	// MarkRead marks a single inbox message as read.
	MarkRead(ctx context.Context, messageID string) error

	// RecentByUser returns the user's most recent submissions to the
	// monitored community, at most limit entries.
	RecentByUser(ctx context.Context, user string, limit int) ([]Submission, error)

	// IsApproved reports whether the submission is currently approved.
	IsApproved(ctx context.Context, submissionID string) (bool, error)

	// ReportCount returns how many reports the platform currently holds
	// against a submission.
	ReportCount(ctx context.Context, submissionID string) (int, error)

	// WikiPage returns the raw markdown body of a community wiki page.
	WikiPage(ctx context.Context, name string) (string, error)
}
