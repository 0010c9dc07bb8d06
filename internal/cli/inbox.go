package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
	"github.com/nooksapp/nooks/internal/contrib"
	"github.com/nooksapp/nooks/internal/domain"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Submit and review task proposals",
}

var inboxSubmitCmd = &cobra.Command{
	Use:   "submit <title>",
	Short: "Submit a task proposal to the linked owner",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		params := contrib.SubmitParams{
			Title:       args[0],
			Details:     taskDetails,
			IsUrgent:    taskUrgent,
			IsImportant: taskImportant,
		}
		if taskDue != "" {
			due, err := parseDate(taskDue)
			if err != nil {
				return err
			}
			params.DueDate = &due
		}

		item, err := svc.SubmitToInbox(cmd.Context(), sess, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted %q (%s)\n", item.Title, item.ID)
		return nil
	}),
}

var inboxLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List inbox items",
	Long: `In owner mode, lists proposals awaiting review. In contributor mode,
lists your own submissions and their review outcomes, minus any you
have dismissed on this device.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		mode, err := app.Store.Prefs.Mode()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		var items []domain.InboxItem
		if mode == domain.AppModeContributor {
			items, err = svc.ContributorInbox(cmd.Context(), sess)
		} else {
			items, err = svc.PendingInbox(cmd.Context(), sess)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "Inbox is empty.")
			return nil
		}
		for _, item := range items {
			line := fmt.Sprintf("%-10s %s  %s", item.Status, item.ID, item.Title)
			if mode != domain.AppModeContributor {
				line += "  from " + item.ContributorEmail
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}),
}

var inboxAcceptCmd = &cobra.Command{
	Use:   "accept <item-id>",
	Short: "Accept a proposal, creating a local task",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.Options{NeedsDB: true, NeedsRemote: true, Mirror: true}, func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		item, err := findInboxItem(cmd, app, sess.AccountID, args[0])
		if err != nil {
			return err
		}

		taskID, err := svc.AcceptInboxItem(cmd.Context(), sess, *item)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Accepted %q as task %d\n", item.Title, taskID)
		return nil
	}),
}

var inboxDeclineCmd = &cobra.Command{
	Use:   "decline <item-id>",
	Short: "Decline a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		item, err := findInboxItem(cmd, app, sess.AccountID, args[0])
		if err != nil {
			return err
		}

		if err := svc.DeclineInboxItem(cmd.Context(), sess, *item); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Declined %q\n", item.Title)
		return nil
	}),
}

var inboxDismissCmd = &cobra.Command{
	Use:   "dismiss <item-id>",
	Short: "Hide a reviewed submission from this device",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithRemote(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		sess, err := app.RequireSession()
		if err != nil {
			return err
		}

		svc := contrib.NewService(app.Remote, app.Store)
		ownerUID, _, err := svc.LinkedOwner()
		if err != nil {
			return err
		}
		item, err := findInboxItem(cmd, app, ownerUID, args[0])
		if err != nil {
			return err
		}
		if item.ContributorUID != sess.AccountID {
			return fmt.Errorf("inbox item %s is not one of your submissions", item.ID)
		}

		if err := svc.Dismiss(*item); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %q\n", item.Title)
		return nil
	}),
}

var inboxUndismissCmd = &cobra.Command{
	Use:   "undismiss <item-id>",
	Short: "Restore a dismissed submission",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		svc := contrib.NewService(app.Remote, app.Store)
		if err := svc.Undismiss(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
		return nil
	}),
}

// findInboxItem resolves an item id against the given account's inbox.
func findInboxItem(cmd *cobra.Command, app *appctx.App, accountID, id string) (*domain.InboxItem, error) {
	items, err := app.Remote.ListInbox(cmd.Context(), accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("inbox item %s: %w", id, domain.ErrNotFound)
}

func init() {
	rootCmd.AddCommand(inboxCmd)
	inboxCmd.AddCommand(inboxSubmitCmd, inboxLsCmd, inboxAcceptCmd, inboxDeclineCmd, inboxDismissCmd, inboxUndismissCmd)

	inboxSubmitCmd.Flags().StringVarP(&taskDetails, "details", "d", "", "Proposal details")
	inboxSubmitCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	inboxSubmitCmd.Flags().BoolVar(&taskUrgent, "urgent", false, "Mark urgent")
	inboxSubmitCmd.Flags().BoolVar(&taskImportant, "important", false, "Mark important")
}
