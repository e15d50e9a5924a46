package sweep

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/inbox"
	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/store"
)

// recentHistoryLimit bounds the fallback fetch of an author's recent
// submissions when their record is gone.
const recentHistoryLimit = 20

// handleMessage classifies one inbox message and applies its
// disposition. Every path ends by marking the message read exactly
// once; the single exception is a deleted author, whose message can
// never be answered and is skipped outright.
func (r *Runner) handleMessage(ctx context.Context, log *slog.Logger, cfg config.Config, msg platform.Message) error {
	if msg.Author == "" || strings.Contains(msg.Author, "[deleted]") {
		log.Info("message from deleted account skipped", "message_id", msg.ID)
		return nil
	}

	rec, err := r.store.FindByUser(ctx, msg.Author)
	var recPtr *store.PostRecord
	switch {
	case err == nil:
		recPtr = &rec
	case errors.Is(err, store.ErrNotFound):
		recPtr = nil
	default:
		log.Error("record lookup by user failed, leaving message unread",
			"user", msg.Author,
			"error", err,
		)
		return nil
	}

	var facts inbox.Facts
	if recPtr == nil {
		facts, err = r.gatherFacts(ctx, log, cfg, msg)
		if err != nil {
			return err
		}
	}

	d := inbox.Classify(msg, recPtr, facts, cfg, r.clock.Now())

	switch d.Kind {
	case inbox.Ignore:
		log.Info("message ignored",
			"user", msg.Author,
			"reason", d.Reason,
		)

	case inbox.Timeout:
		log.Info("timed out response",
			"user", msg.Author,
			"delta", d.Delta,
		)
		msgs := r.policy.Messages
		if err := r.client.SendMessage(ctx, msg.Author, msgs.TimeoutSubject, msgs.TimeoutBody); err != nil {
			if platform.IsTransient(err) {
				return err
			}
			log.Error("timeout notice send failed",
				"user", msg.Author,
				"error", err,
			)
		}

	case inbox.Retry:
		log.Info("insufficient answer, re-prompting",
			"user", msg.Author,
			"delta", d.Delta,
			"length", len(msg.Body),
		)
		msgs := r.policy.Messages
		if err := r.client.SendMessage(ctx, msg.Author, msgs.RetrySubject, msgs.RetryBody); err != nil {
			if platform.IsTransient(err) {
				return err
			}
			log.Error("retry prompt send failed",
				"user", msg.Author,
				"error", err,
			)
		}

	case inbox.Accept:
		if err := r.acceptAnswer(ctx, log, msg, *recPtr, d); err != nil {
			return err
		}
	}

	if err := r.client.MarkRead(ctx, msg.ID); err != nil {
		if platform.IsTransient(err) {
			return err
		}
		log.Error("mark read failed",
			"message_id", msg.ID,
			"error", err,
		)
	}
	return nil
}

// gatherFacts resolves the platform-side fallback checks for a message
// whose author has no record. All three facts default to false on
// non-transient lookup failures, which biases toward the timeout notice
// rather than silently dropping a legitimate answer.
func (r *Runner) gatherFacts(ctx context.Context, log *slog.Logger, cfg config.Config, msg platform.Message) (inbox.Facts, error) {
	msgs := r.policy.Messages
	facts := inbox.Facts{
		SubjectMatchesPrompt: inbox.SubjectMatches(msg.Subject, msgs.PromptSubject, msgs.RetrySubject),
	}

	// Approved-post check walks the recency cache: any cached submission
	// by this author that the platform now shows approved means the
	// workflow completed and the record loss is benign.
	for _, postID := range r.cache.PostsByAuthor(msg.Author) {
		approved, err := r.client.IsApproved(ctx, postID)
		if err != nil {
			if platform.IsTransient(err) {
				return inbox.Facts{}, err
			}
			log.Warn("approved check failed",
				"post_id", postID,
				"error", err,
			)
			continue
		}
		if approved {
			facts.HasApprovedPost = true
			break
		}
	}

	recent, err := r.client.RecentByUser(ctx, msg.Author, recentHistoryLimit)
	if err != nil {
		if platform.IsTransient(err) {
			return inbox.Facts{}, err
		}
		log.Warn("user history fetch failed",
			"user", msg.Author,
			"error", err,
		)
		return facts, nil
	}

	now := r.clock.Now()
	for _, sub := range recent {
		if now.Sub(sub.CreatedAt) <= cfg.ReinstateWindow {
			facts.HasRecentPost = true
			break
		}
	}
	return facts, nil
}

// acceptAnswer publishes an accepted answer and completes the workflow
// for the submission.
//
// When the disposition carries Publish, the sticky comment goes up
// first, then the replied flag, then the approval (plus a moderator
// flag when the platform already holds reports). The record is deleted
// in every Accept case - including pre-emptive answers that never saw a
// removal - because the workflow for the submission is done.
func (r *Runner) acceptAnswer(ctx context.Context, log *slog.Logger, msg platform.Message, rec store.PostRecord, d inbox.Disposition) error {
	preview := msg.Body
	if len(preview) > 50 {
		preview = preview[:50]
	}
	log.Info("answer accepted",
		"user", msg.Author,
		"post_id", rec.PostID,
		"delta", d.Delta,
		"answer", preview,
	)

	if d.Publish {
		if !rec.Replied {
			if err := r.client.StickyReply(ctx, rec.PostID, r.policy.RenderSticky(msg.Body)); err != nil {
				if platform.IsTransient(err) {
					return err
				}
				log.Error("sticky comment failed",
					"post_id", rec.PostID,
					"error", err,
				)
			}
		}

		if err := r.store.SetReplied(ctx, rec.RowID); err != nil {
			log.Error("replied flag update failed",
				"post_id", rec.PostID,
				"error", err,
			)
		}

		if err := r.client.Approve(ctx, rec.PostID); err != nil {
			if platform.IsTransient(err) {
				return err
			}
			log.Error("approval failed",
				"post_id", rec.PostID,
				"error", err,
			)
		} else {
			log.Info("submission approved",
				"post_id", rec.PostID,
				"user", rec.User,
			)
			r.flagHeldReports(ctx, log, rec.PostID)
		}
	}

	log.Info("workflow complete, deleting record",
		"post_id", rec.PostID,
		"user", rec.User,
	)
	if err := r.store.Delete(ctx, rec.RowID); err != nil {
		log.Warn("record delete failed",
			"post_id", rec.PostID,
			"error", err,
		)
	}
	return nil
}

// flagHeldReports files a moderator-queue flag when the platform still
// holds auto-moderation reports against a freshly approved submission,
// so the reports are not silently swallowed by the approval.
func (r *Runner) flagHeldReports(ctx context.Context, log *slog.Logger, postID string) {
	n, err := r.client.ReportCount(ctx, postID)
	if err != nil {
		log.Warn("report count check failed",
			"post_id", postID,
			"error", err,
		)
		return
	}
	if n > 0 {
		if err := r.client.Report(ctx, postID, "Warning: check automod queue for auto report"); err != nil {
			log.Warn("report flag failed",
				"post_id", postID,
				"error", err,
			)
		}
	}
}
