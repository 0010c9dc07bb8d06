package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the starter dataset into an empty store",
	Long: `Seed inserts a few starter buckets and tasks so a fresh store is not
empty. It is a no-op when the store already holds any bucket, so it is
safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		seeded, err := app.Store.SeedIfEmpty()
		if err != nil {
			return err
		}
		if seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "Seeded starter buckets and tasks.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Store is not empty, nothing to seed.")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
