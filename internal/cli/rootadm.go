package cli

import (
	"github.com/spf13/cobra"
)

var rootAdmCmd = &cobra.Command{
	Use:   "nooksadm",
	Short: "Administrative CLI for the nooks database lifecycle",
	Long: `nooksadm is the administrative companion to nooks. It handles the
database lifecycle (migrations, status) and should not be needed in
day-to-day use.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to database file (overrides NOOKS_DB_PATH)")
}
