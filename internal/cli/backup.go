package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/backup"
	"github.com/nooksapp/nooks/internal/cli/appctx"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and restore JSON backups",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write a backup file",
	Long: `Export writes the full local dataset to a JSON backup file. Without a
path the file is named nooks-backup-YYYY-MM-DD.json and placed in the
configured backup directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		data, err := app.Store.Data()
		if err != nil {
			return err
		}

		now := time.Now()
		doc := backup.Export(data.Buckets, data.Tasks, now)

		path := filepath.Join(app.Config.BackupDir, backup.Filename(now))
		if len(args) == 1 {
			path = args[0]
		}
		if err := backup.WriteFile(path, doc); err != nil {
			return err
		}
		if err := app.Store.Prefs.SetLastExportAt(now); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d buckets and %d tasks to %s\n",
			len(doc.Buckets), len(doc.Tasks), path)
		return nil
	}),
}

var backupImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Restore from a backup file",
	Long: `Import restores a backup file into the local store.

With --mode merge (the default) backup items are reconciled against the
current data and only net-new items are inserted. With --mode replace
the store is cleared first and the backup becomes the entire dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		doc, err := backup.ReadFile(args[0])
		if err != nil {
			return err
		}

		res, err := backup.Import(app.Store, doc, backup.Mode(backupMode))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Cleared {
			fmt.Fprintln(out, "Cleared existing data.")
		}
		fmt.Fprintf(out, "Imported %d buckets and %d tasks (%s mode)\n",
			res.BucketsAdded, res.TasksAdded, res.Mode)
		return nil
	}),
}

var backupDiffCmd = &cobra.Command{
	Use:   "diff <path>",
	Short: "Compare a backup file against the current data",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		doc, err := backup.ReadFile(args[0])
		if err != nil {
			return err
		}

		data, err := app.Store.Data()
		if err != nil {
			return err
		}
		current := backup.Export(data.Buckets, data.Tasks, time.Now())

		diff, err := backup.Diff(*doc, current)
		if err != nil {
			return err
		}
		if diff == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Backup matches current data.")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), diff)
		return nil
	}),
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show when the last backup was exported",
	Args:  cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		last, err := app.Store.Prefs.LastExportAt()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if last == nil {
			fmt.Fprintln(out, "No backup has been exported yet.")
			return nil
		}

		age, stale := backup.Staleness(last, time.Now())
		fmt.Fprintf(out, "Last export: %s (%s ago)\n", last.Format("2006-01-02 15:04"), age.Round(time.Minute))
		if stale {
			fmt.Fprintln(out, "Backup is stale; consider running 'nooks backup export'.")
		}
		return nil
	}),
}

var backupMode string

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd, backupImportCmd, backupDiffCmd, backupStatusCmd)

	backupImportCmd.Flags().StringVarP(&backupMode, "mode", "m", "merge", "Import mode: merge or replace")
}
