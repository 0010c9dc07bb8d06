package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage buckets",
}

var bucketAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		id, err := app.Store.Buckets.Add(args[0], bucketEmoji)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created bucket %d: %s\n", id, args[0])
		return nil
	}),
}

var bucketLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List buckets",
	Args:  cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		buckets, err := app.Store.Buckets.All()
		if err != nil {
			return err
		}
		if bucketLsJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(buckets)
		}
		for _, b := range buckets {
			n, err := app.Store.Tasks.ByBucket(b.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-6d %s %s (%d tasks)\n", b.ID, b.Emoji, b.Name, len(n))
		}
		return nil
	}),
}

var bucketSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Rename a bucket or change its emoji",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := app.Store.Buckets.Get(id)
		if err != nil {
			return err
		}
		name := b.Name
		if cmd.Flags().Changed("name") {
			name = bucketName
		}
		emoji := b.Emoji
		if cmd.Flags().Changed("emoji") {
			emoji = bucketEmoji
		}
		if err := app.Store.Buckets.Update(id, name, emoji); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated bucket %d\n", id)
		return nil
	}),
}

var bucketRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a bucket, unfiling its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.Store.Buckets.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted bucket %d (its tasks are now unfiled)\n", id)
		return nil
	}),
}

var (
	bucketName   string
	bucketEmoji  string
	bucketLsJSON bool
)

func init() {
	rootCmd.AddCommand(bucketCmd)
	bucketCmd.AddCommand(bucketAddCmd, bucketLsCmd, bucketSetCmd, bucketRmCmd)

	bucketAddCmd.Flags().StringVarP(&bucketEmoji, "emoji", "e", "", "Emoji for the bucket")
	bucketLsCmd.Flags().BoolVar(&bucketLsJSON, "json", false, "Output as JSON")
	bucketSetCmd.Flags().StringVarP(&bucketName, "name", "n", "", "New name")
	bucketSetCmd.Flags().StringVarP(&bucketEmoji, "emoji", "e", "", "New emoji")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
