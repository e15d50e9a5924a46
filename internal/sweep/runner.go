package sweep

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/engine"
	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/policy"
	"github.com/aitp-mods/answerbot/internal/recency"
	"github.com/aitp-mods/answerbot/internal/store"
)

// Runner owns one polling workflow: a platform client, the record
// store, the recency cache, and the current configuration snapshot.
//
// Runner is single-threaded: Cycle must not be called concurrently.
// All platform and store I/O happens here; the engine and classifier
// packages stay pure.
type Runner struct {
	client platform.Client
	store  *store.Store
	cache  *recency.Cache
	policy *policy.Policy
	clock  engine.Clock
	cfg    config.Config
}

// NewRunner creates a runner starting from the built-in tunable
// defaults. The cache is owned by the runner from here on.
func NewRunner(client platform.Client, st *store.Store, cache *recency.Cache, pol *policy.Policy, clock engine.Clock) *Runner {
	return &Runner{
		client: client,
		store:  st,
		cache:  cache,
		policy: pol,
		clock:  clock,
		cfg:    config.Defaults(),
	}
}

// Config returns the current configuration snapshot.
func (r *Runner) Config() config.Config {
	return r.cfg
}

// Cycle executes one run-to-completion polling pass.
//
// Returns an error only for transient platform failures; the caller is
// expected to back off and call Cycle again. Every cycle gets a fresh
// UUIDv7 correlation token stamped on its log lines.
func (r *Runner) Cycle(ctx context.Context) error {
	log := slog.With("cycle", uuid.Must(uuid.NewV7()).String())

	r.reloadConfig(ctx, log)
	cfg := r.cfg // immutable snapshot for the whole cycle

	if err := r.admitNew(ctx, log, cfg); err != nil {
		return err
	}
	if err := r.sweepRecords(ctx, log, cfg); err != nil {
		return err
	}
	if err := r.drainInbox(ctx, log, cfg); err != nil {
		return err
	}

	return nil
}

// reloadConfig overlays the remote document onto the current snapshot.
// Failure is never fatal: the previous values stay in effect.
func (r *Runner) reloadConfig(ctx context.Context, log *slog.Logger) {
	doc, err := r.client.WikiPage(ctx, r.policy.ConfigWikiPage)
	if err != nil {
		log.Warn("config reload failed, keeping previous values",
			"page", r.policy.ConfigWikiPage,
			"error", err,
		)
		return
	}
	r.cfg = config.Parse(doc, r.cfg)
	log.Debug("config reloaded",
		"removal_delay", r.cfg.RemovalDelay,
		"reinstate_window", r.cfg.ReinstateWindow,
		"fetch_limit", r.cfg.FetchLimit,
	)
}

// admitNew pulls the bounded batch of new submissions and admits each.
func (r *Runner) admitNew(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	subs, err := r.client.ListNew(ctx, cfg.FetchLimit)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if r.cache.Seen(sub.ID) {
			continue
		}
		if err := r.admitOne(ctx, log, cfg, sub); err != nil {
			return err
		}
	}
	return nil
}

// admitOne runs the lifecycle engine for a single submission and applies
// its decision.
func (r *Runner) admitOne(ctx context.Context, log *slog.Logger, cfg config.Config, sub platform.Submission) error {
	now := r.clock.Now()

	rec, err := r.store.FindByPostID(ctx, sub.ID)
	var recPtr *store.PostRecord
	switch {
	case err == nil:
		recPtr = &rec
	case errors.Is(err, store.ErrNotFound):
		recPtr = nil
	default:
		log.Error("record lookup failed, skipping submission",
			"post_id", sub.ID,
			"error", err,
		)
		return nil
	}

	// Cheap guards first; only consult the platform for an existing bot
	// reply when nothing else already skips the submission.
	decision := engine.Admit(sub, recPtr, false, cfg, now)
	if decision.Outcome != engine.AdmitSkip {
		botReplied, err := r.client.HasBotReply(ctx, sub.ID)
		if err != nil {
			if platform.IsTransient(err) {
				return err
			}
			log.Warn("bot reply check failed, assuming none",
				"post_id", sub.ID,
				"error", err,
			)
		}
		decision = engine.Admit(sub, recPtr, botReplied, cfg, now)
	}

	switch decision.Outcome {
	case engine.AdmitSkip:
		log.Debug("submission skipped",
			"post_id", sub.ID,
			"user", sub.Author,
			"reason", decision.Reason.String(),
		)
		return nil

	case engine.AdmitTrack:
		return r.trackAndPrompt(ctx, log, sub)

	case engine.AdmitPrompt:
		// Record exists but the prompt never went out; retry it.
		if r.sendPrompt(ctx, log, sub, recPtr.RowID) {
			r.cache.Add(sub.ID, sub.Author)
		}
		return nil

	case engine.AdmitSettled:
		r.cache.Add(sub.ID, sub.Author)
		return nil

	default:
		log.Error("unknown admit outcome", "outcome", int(decision.Outcome))
		return nil
	}
}

// trackAndPrompt creates the lifecycle record for a brand-new submission
// and sends the first prompt.
func (r *Runner) trackAndPrompt(ctx context.Context, log *slog.Logger, sub platform.Submission) error {
	// At most one live record per author: clear any stale ones first.
	cleared, err := r.store.DeleteByUser(ctx, sub.Author)
	if err != nil {
		log.Error("stale record cleanup failed",
			"user", sub.Author,
			"error", err,
		)
	} else if cleared > 0 {
		log.Info("cleared stale records",
			"user", sub.Author,
			"count", cleared,
		)
	}

	inserted, err := r.store.Insert(ctx, store.PostRecord{
		PostID:    sub.ID,
		User:      sub.Author,
		CreatedAt: sub.CreatedAt,
	})
	if err != nil {
		// Treated as not-yet-tracked: the next cycle re-admits.
		log.Error("record insert failed",
			"post_id", sub.ID,
			"user", sub.Author,
			"error", err,
		)
		return nil
	}
	if !inserted {
		log.Warn("record already present, insert skipped",
			"post_id", sub.ID,
			"user", sub.Author,
		)
	}

	rec, err := r.store.FindByPostID(ctx, sub.ID)
	if err != nil {
		log.Error("record re-read after insert failed",
			"post_id", sub.ID,
			"error", err,
		)
		return nil
	}

	log.Info("tracking submission",
		"post_id", sub.ID,
		"user", sub.Author,
		"permalink", sub.Permalink,
	)

	if r.sendPrompt(ctx, log, sub, rec.RowID) {
		r.cache.Add(sub.ID, sub.Author)
	}
	return nil
}

// sendPrompt sends the prompt message and, on success, sets the
// prompted flag. Reports whether the prompt went out; send failures
// (e.g. the user blocks private messages) leave the record eligible for
// a retry next cycle.
func (r *Runner) sendPrompt(ctx context.Context, log *slog.Logger, sub platform.Submission, rowID int64) bool {
	msgs := r.policy.Messages
	err := r.client.SendMessage(ctx, sub.Author, msgs.PromptSubject, r.policy.RenderPrompt(sub.Permalink))
	if err != nil {
		log.Error("prompt send failed",
			"post_id", sub.ID,
			"user", sub.Author,
			"error", err,
		)
		return false
	}

	if err := r.store.SetPrompted(ctx, rowID); err != nil {
		// Record gone or store failure: the prompted-check will
		// de-duplicate on the unique key next cycle.
		log.Error("prompted flag update failed",
			"post_id", sub.ID,
			"error", err,
		)
	}

	log.Info("prompt sent",
		"post_id", sub.ID,
		"user", sub.Author,
	)
	return true
}

// sweepRecords applies time-based transitions to every stored record.
func (r *Runner) sweepRecords(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	records, err := r.store.All(ctx)
	if err != nil {
		log.Error("record scan failed, skipping sweep", "error", err)
		return nil
	}

	now := r.clock.Now()
	for _, rec := range records {
		d := engine.SweepRecord(rec, cfg, now)

		if d.Remove {
			if err := r.client.Remove(ctx, rec.PostID); err != nil {
				if platform.IsTransient(err) {
					return err
				}
				log.Error("submission removal failed",
					"post_id", rec.PostID,
					"user", rec.User,
					"error", err,
				)
			} else {
				log.Info("submission removed pending answer",
					"post_id", rec.PostID,
					"user", rec.User,
					"age", rec.Age(now),
				)
				if err := r.store.SetRemoved(ctx, rec.RowID); err != nil {
					log.Error("removed flag update failed",
						"post_id", rec.PostID,
						"error", err,
					)
				}
			}
		}

		if d.Prune {
			log.Info("pruning record",
				"post_id", rec.PostID,
				"user", rec.User,
				"age", rec.Age(now),
			)
			if err := r.store.Delete(ctx, rec.RowID); err != nil {
				log.Warn("record prune failed",
					"post_id", rec.PostID,
					"error", err,
				)
			}
		}
	}
	return nil
}

// drainInbox classifies and settles every unread message.
func (r *Runner) drainInbox(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	msgs, err := r.client.UnreadInbox(ctx)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := r.handleMessage(ctx, log, cfg, msg); err != nil {
			return err
		}
	}
	return nil
}
