package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/internal/application/services"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// NewTaskCommand creates the task management command
func NewTaskCommand(opts *RootOptions) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
		Long:  "Create, edit, complete and delete dated tasks",
	}

	taskCmd.AddCommand(newTaskSaveCommand(opts, false))
	taskCmd.AddCommand(newTaskSaveCommand(opts, true))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally for one date",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			tasks := app.tasks.List()
			dates := tasks.Dates()
			if date != "" {
				dates = []string{date}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTIME\tDONE\tCATEGORY\tPROJECT\tTITLE")
			for _, d := range dates {
				for _, t := range tasks[d] {
					fmt.Fprintf(w, "%s\t%s\t%s-%s\t[%s]\t%s\t%s\t%s\n",
						t.ID, d, t.StartTime, t.EndTime, checkMark(t.Completed), t.Category, t.ProjectID, t.Title)
				}
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().String("date", "", "only list this date (YYYY-MM-DD)")
	taskCmd.AddCommand(listCmd)

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			task, err := app.tasks.ToggleCompleted(cmd.Context(), date, idArg(args))
			if task == nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s completed: %t\n", task.ID, task.Completed)
			return err
		}),
	}
	doneCmd.Flags().String("date", "", "date bucket holding the task")
	taskCmd.AddCommand(doneCmd)

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			if err := app.tasks.Delete(cmd.Context(), date, idArg(args)); settled(err) != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted\n", args[0])
			return nil
		}),
	}
	rmCmd.Flags().String("date", "", "date bucket holding the task")
	taskCmd.AddCommand(rmCmd)

	return taskCmd
}

func newTaskSaveCommand(opts *RootOptions, editing bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
	}
	if editing {
		cmd.Use = "edit <id>"
		cmd.Short = "Edit a task; unset flags keep their current value"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
		input := services.TaskInput{
			Date:      time.Now().Format(entities.DateLayout),
			StartTime: "09:00",
			EndTime:   "10:00",
		}
		if editing {
			existing, err := app.tasks.Get(idArg(args))
			if err != nil {
				return err
			}
			input = services.TaskInput{
				ID:          existing.ID,
				Title:       existing.Title,
				Description: existing.Description,
				Date:        existing.Date,
				StartTime:   existing.StartTime,
				EndTime:     existing.EndTime,
				Category:    existing.Category,
				ProjectID:   existing.ProjectID,
			}
		}

		flags := cmd.Flags()
		overrideString(flags, "title", &input.Title)
		overrideString(flags, "description", &input.Description)
		overrideString(flags, "date", &input.Date)
		overrideString(flags, "start", &input.StartTime)
		overrideString(flags, "end", &input.EndTime)
		overrideString(flags, "category", &input.Category)
		overrideID(flags, "project", &input.ProjectID)

		task, err := app.tasks.CreateOrUpdate(cmd.Context(), input)
		if task == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s saved on %s %s-%s\n", task.ID, task.Date, task.StartTime, task.EndTime)
		return err
	})

	cmd.Flags().String("title", "", "task title")
	cmd.Flags().String("description", "", "task description")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD), today by default")
	cmd.Flags().String("start", "", "start time (HH:MM)")
	cmd.Flags().String("end", "", "end time (HH:MM)")
	cmd.Flags().String("category", "", "category, Meeting by default")
	cmd.Flags().String("project", "", "project id; empty string unlinks")
	return cmd
}
