package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
	"github.com/nooksapp/nooks/internal/domain"
)

var modeCmd = &cobra.Command{
	Use:   "mode [owner|contributor]",
	Short: "Show or set the device mode",
	Long: `Mode selects the role this device operates in. Owners manage their own
tasks and review their inbox; contributors submit task proposals to the
owner they are linked to. The mode is a device-local setting and is
never synchronized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			mode, err := app.Store.Prefs.Mode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mode)
			return nil
		}

		mode := domain.AppMode(args[0])
		if err := app.Store.Prefs.SetMode(mode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Device mode set to %s\n", mode)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(modeCmd)
}
