package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aitp-mods/answerbot/internal/platform"
)

// ListNew returns the newest submissions to the monitored community.
func (c *Client) ListNew(ctx context.Context, limit int) ([]platform.Submission, error) {
	form := url.Values{}
	form.Set("limit", strconv.Itoa(limit))

	var page listing
	if err := c.do(ctx, "list_new", http.MethodGet, "/r/"+c.community+"/new", form, &page); err != nil {
		return nil, err
	}

	subs := make([]platform.Submission, 0, len(page.Data.Children))
	for _, t := range page.Data.Children {
		subs = append(subs, t.submission())
	}
	return subs, nil
}

// HasBotReply reports whether the bot account already commented at the
// top level of a submission.
func (c *Client) HasBotReply(ctx context.Context, submissionID string) (bool, error) {
	form := url.Values{}
	form.Set("depth", "1")
	form.Set("limit", "100")

	// The comments endpoint returns a two-element array: the submission
	// listing, then the comment tree.
	var pages []listing
	if err := c.do(ctx, "has_bot_reply", http.MethodGet, "/comments/"+submissionID, form, &pages); err != nil {
		return false, err
	}
	if len(pages) < 2 {
		return false, nil
	}

	for _, t := range pages[1].Data.Children {
		if strings.EqualFold(t.Data.Author, c.creds.Username) {
			return true, nil
		}
	}
	return false, nil
}

// Approve reinstates a removed submission.
func (c *Client) Approve(ctx context.Context, submissionID string) error {
	form := url.Values{}
	form.Set("id", kindSubmission+submissionID)
	return c.do(ctx, "approve", http.MethodPost, "/api/approve", form, nil)
}

// Remove takes a submission down (non-spam removal).
func (c *Client) Remove(ctx context.Context, submissionID string) error {
	form := url.Values{}
	form.Set("id", kindSubmission+submissionID)
	form.Set("spam", "false")
	return c.do(ctx, "remove", http.MethodPost, "/api/remove", form, nil)
}

// Report files a report against a submission.
func (c *Client) Report(ctx context.Context, submissionID, reason string) error {
	form := url.Values{}
	form.Set("thing_id", kindSubmission+submissionID)
	form.Set("reason", reason)
	return c.do(ctx, "report", http.MethodPost, "/api/report", form, nil)
}

// StickyReply posts a comment on the submission, then distinguishes it
// as a stickied moderator comment and locks it. Distinguish and lock
// failures after a successful post are returned: the caller logs them,
// and the bot-reply check keeps a retry from double-posting.
func (c *Client) StickyReply(ctx context.Context, submissionID, body string) error {
	form := url.Values{}
	form.Set("thing_id", kindSubmission+submissionID)
	form.Set("text", body)
	form.Set("api_type", "json")

	var posted struct {
		JSON struct {
			Data struct {
				Things []thing `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := c.do(ctx, "sticky_reply", http.MethodPost, "/api/comment", form, &posted); err != nil {
		return err
	}
	if len(posted.JSON.Data.Things) == 0 {
		return fmt.Errorf("sticky_reply: no comment in response")
	}
	commentName := posted.JSON.Data.Things[0].Data.Name

	dist := url.Values{}
	dist.Set("id", commentName)
	dist.Set("how", "yes")
	dist.Set("sticky", "true")
	if err := c.do(ctx, "distinguish", http.MethodPost, "/api/distinguish", dist, nil); err != nil {
		return err
	}

	lock := url.Values{}
	lock.Set("id", commentName)
	return c.do(ctx, "lock", http.MethodPost, "/api/lock", lock, nil)
}

// SendMessage sends a private message.
func (c *Client) SendMessage(ctx context.Context, user, subject, body string) error {
	form := url.Values{}
	form.Set("to", user)
	form.Set("subject", subject)
	form.Set("text", body)
	form.Set("api_type", "json")
	return c.do(ctx, "send_message", http.MethodPost, "/api/compose", form, nil)
}

// UnreadInbox returns unread private messages. Only the first page is
// fetched; one page covers this workflow's volume between cycles.
func (c *Client) UnreadInbox(ctx context.Context) ([]platform.Message, error) {
	form := url.Values{}
	form.Set("limit", "100")

	var page listing
	if err := c.do(ctx, "unread_inbox", http.MethodGet, "/message/unread", form, &page); err != nil {
		return nil, err
	}

	msgs := make([]platform.Message, 0, len(page.Data.Children))
	for _, t := range page.Data.Children {
		msgs = append(msgs, t.message())
	}
	return msgs, nil
}

// MarkRead marks one message read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	form := url.Values{}
	form.Set("id", kindMessage+messageID)
	return c.do(ctx, "mark_read", http.MethodPost, "/api/read_message", form, nil)
}

// RecentByUser returns the user's recent submissions to the monitored
// community.
func (c *Client) RecentByUser(ctx context.Context, user string, limit int) ([]platform.Submission, error) {
	form := url.Values{}
	form.Set("limit", strconv.Itoa(limit))

	var page listing
	if err := c.do(ctx, "recent_by_user", http.MethodGet, "/user/"+user+"/submitted", form, &page); err != nil {
		return nil, err
	}

	var subs []platform.Submission
	for _, t := range page.Data.Children {
		if strings.EqualFold(t.Data.Subreddit, c.community) {
			subs = append(subs, t.submission())
		}
	}
	return subs, nil
}

// IsApproved reports the submission's current approved flag.
func (c *Client) IsApproved(ctx context.Context, submissionID string) (bool, error) {
	t, err := c.info(ctx, submissionID)
	if err != nil {
		return false, err
	}
	return t.Data.Approved, nil
}

// ReportCount returns the submission's outstanding report count.
func (c *Client) ReportCount(ctx context.Context, submissionID string) (int, error) {
	t, err := c.info(ctx, submissionID)
	if err != nil {
		return 0, err
	}
	return t.Data.NumReports, nil
}

// info fetches a single submission's metadata.
func (c *Client) info(ctx context.Context, submissionID string) (thing, error) {
	form := url.Values{}
	form.Set("id", kindSubmission+submissionID)

	var page listing
	if err := c.do(ctx, "info", http.MethodGet, "/api/info", form, &page); err != nil {
		return thing{}, err
	}
	if len(page.Data.Children) == 0 {
		return thing{}, fmt.Errorf("info: submission %s not found", submissionID)
	}
	return page.Data.Children[0], nil
}

// WikiPage returns the markdown body of a community wiki page.
func (c *Client) WikiPage(ctx context.Context, name string) (string, error) {
	var page struct {
		Data struct {
			ContentMD string `json:"content_md"`
		} `json:"data"`
	}
	if err := c.do(ctx, "wiki_page", http.MethodGet, "/r/"+c.community+"/wiki/"+name, nil, &page); err != nil {
		return "", err
	}
	return page.Data.ContentMD, nil
}
