package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
	"github.com/nooksapp/nooks/internal/contrib"
	"github.com/nooksapp/nooks/internal/domain"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Issue and redeem contributor invites",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue an invite code for this account",
	Args:  cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		inv, err := svc.CreateInvite(cmd.Context(), sess)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invite code: %s\n", inv.Code)
		fmt.Fprintf(out, "Expires:     %s\n", inv.ExpiresAt.Format("2006-01-02 15:04 MST"))
		return nil
	}),
}

var inviteRedeemCmd = &cobra.Command{
	Use:   "redeem <code>",
	Short: "Redeem an invite code and link to its owner",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		perm, err := svc.RedeemInvite(cmd.Context(), args[0], sess)
		if err != nil {
			var ie *domain.InviteError
			if errors.As(err, &ie) {
				switch ie.Kind {
				case domain.InviteErrorInvalidCode:
					return fmt.Errorf("invite code %s does not exist", ie.Code)
				case domain.InviteErrorExpired:
					return fmt.Errorf("invite code %s has expired; ask for a new one", ie.Code)
				case domain.InviteErrorAlreadyUsed:
					return fmt.Errorf("invite code %s was already redeemed", ie.Code)
				}
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Linked to %s. You can now submit tasks with 'nooks inbox submit'.\n", perm.OwnerEmail)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(inviteCmd)
	inviteCmd.AddCommand(inviteCreateCmd, inviteRedeemCmd)
}
