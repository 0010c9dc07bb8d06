package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/cli/appctx"
	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/store"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		params := store.AddParams{
			Title:       args[0],
			Details:     taskDetails,
			IsUrgent:    taskUrgent,
			IsImportant: taskImportant,
		}
		if cmd.Flags().Changed("bucket") {
			params.BucketID = &taskBucketID
		}
		if taskDue != "" {
			due, err := parseDate(taskDue)
			if err != nil {
				return err
			}
			params.DueDate = &due
		}
		if taskStatus != "" {
			params.Status = domain.TaskStatus(taskStatus)
		}

		id, err := app.Store.Tasks.Add(params)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", id, args[0])
		return nil
	}),
}

var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		var tasks []domain.Task
		var err error
		if cmd.Flags().Changed("bucket") {
			tasks, err = app.Store.Tasks.ByBucket(taskBucketID)
		} else {
			tasks, err = app.Store.Tasks.All()
		}
		if err != nil {
			return err
		}

		if taskStatus != "" {
			filtered := tasks[:0]
			for _, t := range tasks {
				if string(t.Status) == taskStatus {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}

		if taskLsJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(tasks)
		}

		buckets, err := app.Store.Buckets.All()
		if err != nil {
			return err
		}
		names := make(map[int64]string, len(buckets))
		for _, b := range buckets {
			names[b.ID] = b.Name
		}

		for _, t := range tasks {
			fmt.Fprintln(cmd.OutOrStdout(), formatTaskLine(t, names))
		}
		return nil
	}),
}

var taskSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update task fields",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		fields := make(map[string]interface{})
		if cmd.Flags().Changed("title") {
			fields["title"] = taskTitle
		}
		if cmd.Flags().Changed("details") {
			fields["details"] = taskDetails
		}
		if cmd.Flags().Changed("status") {
			fields["status"] = taskStatus
		}
		if cmd.Flags().Changed("urgent") {
			fields["is_urgent"] = taskUrgent
		}
		if cmd.Flags().Changed("important") {
			fields["is_important"] = taskImportant
		}
		if cmd.Flags().Changed("bucket") {
			if taskBucketID == 0 {
				fields["bucket_id"] = nil
			} else {
				fields["bucket_id"] = taskBucketID
			}
		}
		if cmd.Flags().Changed("due") {
			if taskDue == "" {
				fields["due_date"] = nil
			} else {
				due, err := parseDate(taskDue)
				if err != nil {
					return err
				}
				fields["due_date"] = due
			}
		}
		if len(fields) == 0 {
			return fmt.Errorf("nothing to update (see --help for flags)")
		}

		if err := app.Store.Tasks.UpdateFields(id, fields); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d\n", id)
		return nil
	}),
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		err = app.Store.Tasks.UpdateFields(id, map[string]interface{}{
			"status": string(domain.TaskStatusDone),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completed task %d\n", id)
		return nil
	}),
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithMirror(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.Store.Tasks.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
		return nil
	}),
}

var (
	taskTitle     string
	taskDetails   string
	taskStatus    string
	taskDue       string
	taskBucketID  int64
	taskUrgent    bool
	taskImportant bool
	taskLsJSON    bool
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskLsCmd, taskSetCmd, taskDoneCmd, taskRmCmd)

	taskAddCmd.Flags().StringVarP(&taskDetails, "details", "d", "", "Task details")
	taskAddCmd.Flags().StringVarP(&taskStatus, "status", "s", "", "Initial status (todo, in_progress, done, backlog)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().Int64VarP(&taskBucketID, "bucket", "b", 0, "Bucket id to file the task under")
	taskAddCmd.Flags().BoolVar(&taskUrgent, "urgent", false, "Mark urgent")
	taskAddCmd.Flags().BoolVar(&taskImportant, "important", false, "Mark important")

	taskLsCmd.Flags().StringVarP(&taskStatus, "status", "s", "", "Filter by status")
	taskLsCmd.Flags().Int64VarP(&taskBucketID, "bucket", "b", 0, "Filter by bucket id")
	taskLsCmd.Flags().BoolVar(&taskLsJSON, "json", false, "Output as JSON")

	taskSetCmd.Flags().StringVarP(&taskTitle, "title", "t", "", "New title")
	taskSetCmd.Flags().StringVarP(&taskDetails, "details", "d", "", "New details")
	taskSetCmd.Flags().StringVarP(&taskStatus, "status", "s", "", "New status")
	taskSetCmd.Flags().StringVar(&taskDue, "due", "", "New due date (YYYY-MM-DD, empty clears)")
	taskSetCmd.Flags().Int64VarP(&taskBucketID, "bucket", "b", 0, "New bucket id (0 unfiles)")
	taskSetCmd.Flags().BoolVar(&taskUrgent, "urgent", false, "Set urgency")
	taskSetCmd.Flags().BoolVar(&taskImportant, "important", false, "Set importance")
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

func formatTaskLine(t domain.Task, bucketNames map[int64]string) string {
	mark := " "
	if t.Status == domain.TaskStatusDone {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %-6d %s", mark, t.ID, t.Title)
	if t.BucketID != nil {
		if name, ok := bucketNames[*t.BucketID]; ok {
			line += fmt.Sprintf("  (%s)", name)
		}
	}
	if t.IsUrgent {
		line += "  !urgent"
	}
	if t.IsImportant {
		line += "  !important"
	}
	if t.DueDate != nil {
		line += "  due " + t.DueDate.Format("2006-01-02")
	}
	if t.Status != domain.TaskStatusDone && t.Status != domain.TaskStatusTodo {
		line += "  [" + string(t.Status) + "]"
	}
	return line
}
