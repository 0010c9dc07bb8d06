package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/merge"
	"github.com/nooksapp/nooks/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the initial sync for the signed-in account",
	Long: `Sync reconciles the local store with the account's remote data: items
present on only one side are copied to the other, duplicates (matched
by title and bucket name, ignoring case) are kept once, and the full
local dataset is pushed back to repair any missed mirror writes.

Local data is never deleted or overwritten by sync; it only grows.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		coord := syncer.NewCoordinator(app.Remote, app.SyncLog)
		err = coord.Run(cmd.Context(), sess, syncer.Callbacks{
			GetLocalData: app.Store.Data,
			InsertMergedItems: func(netNew merge.Data, incomingBuckets []domain.Bucket) error {
				return app.Store.InsertMerged(netNew, incomingBuckets)
			},
			GetAllLocalData: app.Store.Data,
		})
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Sync complete for %s (%s)\n", sess.Email, coord.StateFor(sess.AccountID))
		return nil
	}),
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local and remote item counts",
	Args:  cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		local, err := app.Store.Data()
		if err != nil {
			return err
		}
		rd, err := app.Remote.FetchData(context.Background(), sess.AccountID)
		if err != nil {
			return fmt.Errorf("failed to fetch remote data: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Account: %s\n", sess.Email)
		fmt.Fprintf(out, "Local:  %d buckets, %d tasks\n", len(local.Buckets), len(local.Tasks))
		fmt.Fprintf(out, "Remote: %d buckets, %d tasks\n", len(rd.Buckets), len(rd.Tasks))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncStatusCmd)
}
