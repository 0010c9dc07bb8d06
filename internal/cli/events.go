package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
	"github.com/nooksapp/nooks/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent entries from the mutation journal",
	Args:  cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		w := events.NewWriter(app.DB.DB)
		entries, err := w.Recent(eventsLimit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-20s %s/%d", e.Timestamp.Format("2006-01-02 15:04:05"), e.Op, e.EntityType, e.EntityID)
			if e.Payload != nil {
				line += "  " + *e.Payload
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	}),
}

var eventsLimit int

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Number of entries to show")
}
