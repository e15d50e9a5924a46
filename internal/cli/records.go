package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aitp-mods/answerbot/internal/reddit"
	"github.com/aitp-mods/answerbot/internal/store"
)

// NewRecordsCommand creates the records maintenance command group.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect or clear tracked lifecycle records",
	}

	cmd.AddCommand(newRecordsListCommand(rootOpts))
	cmd.AddCommand(newRecordsClearCommand(rootOpts))

	return cmd
}

// newRecordsListCommand prints every tracked record.
func newRecordsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Print all tracked records",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings(rootOpts.Settings)
			if err != nil {
				return err
			}
			st, err := store.Open(settings.Database)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			records, err := st.All(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan records: %w", err)
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tcreated=%s prompted=%t removed=%t replied=%t\n",
					rec.User, rec.PostID, rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
					rec.Prompted, rec.Removed, rec.Replied)
			}
			return nil
		},
	}
}

// newRecordsClearCommand reinstates and forgets every tracked record.
// Used when retiring the bot or recovering from a bad deploy: each
// tracked submission is approved on the platform before its record is
// deleted, so nothing stays removed with no workflow watching it.
func newRecordsClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Approve every tracked submission and delete its record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings(rootOpts.Settings)
			if err != nil {
				return err
			}
			pol, err := LoadPolicy(settings)
			if err != nil {
				return fmt.Errorf("load policy: %w", err)
			}
			creds, err := LoadCredentials()
			if err != nil {
				return err
			}

			st, err := store.Open(settings.Database)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			client := reddit.NewClient(creds, pol.Community)
			return clearRecords(cmd.Context(), st, client)
		},
	}
}

// clearRecords approves and deletes every record. Approval failures are
// logged and the record is kept so a re-run can retry it.
func clearRecords(ctx context.Context, st *store.Store, client interface {
	Approve(ctx context.Context, submissionID string) error
}) error {
	records, err := st.All(ctx)
	if err != nil {
		return fmt.Errorf("scan records: %w", err)
	}

	for _, rec := range records {
		if err := client.Approve(ctx, rec.PostID); err != nil {
			slog.Error("approve failed, keeping record",
				"post_id", rec.PostID,
				"user", rec.User,
				"error", err,
			)
			continue
		}
		if err := st.Delete(ctx, rec.RowID); err != nil {
			slog.Warn("record delete failed",
				"post_id", rec.PostID,
				"error", err,
			)
		}
	}
	return nil
}
