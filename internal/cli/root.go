package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nooks",
	Short: "Local-first task manager with best-effort cloud sync",
	Long: `nooks manages tasks and buckets in a local SQLite store and mirrors
every change to a remote document store when an account is signed in.
The local store is always the source of truth; sync never blocks or
fails a local operation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides NOOKS_DB_PATH)")
}
