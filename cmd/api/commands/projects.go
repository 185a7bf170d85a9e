package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/internal/application/services"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// NewProjectCommand creates the project management command
func NewProjectCommand(opts *RootOptions) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
		Long:  "Create and manage projects grouping tasks",
	}

	projectCmd.AddCommand(newProjectSaveCommand(opts, false))
	projectCmd.AddCommand(newProjectSaveCommand(opts, true))

	projectCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects with progress",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			tasks := app.tasks.List()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPRIORITY\tDATES\tTASKS\tPROGRESS")
			for _, p := range app.projects.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s..%s\t%d\t%d%%\n",
					p.ID, p.Name, p.Status, p.Priority, p.StartDate, p.EndDate, len(p.Tasks), services.CalculateProgress(p, tasks))
			}
			return w.Flush()
		}),
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:   "progress <id>",
		Short: "Print a project's completion percentage",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			progress, err := app.projects.Progress(idArg(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", progress)
			return nil
		}),
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project and unlink its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.projects.Delete(cmd.Context(), idArg(args)); settled(err) != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s deleted\n", args[0])
			return nil
		}),
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild every project's task list from the tasks",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			changed, err := app.session.RebuildProjectIndex(cmd.Context())
			if settled(err) != nil {
				return err
			}
			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Project index rebuilt")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Project index already up to date")
			}
			return nil
		}),
	})

	return projectCmd
}

func newProjectSaveCommand(opts *RootOptions, editing bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		Args:  cobra.NoArgs,
	}
	if editing {
		cmd.Use = "edit <id>"
		cmd.Short = "Edit a project; unset flags keep their current value"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
		var input services.ProjectInput
		if editing {
			existing, err := app.projects.Get(idArg(args))
			if err != nil {
				return err
			}
			input = services.ProjectInput{
				ID:          existing.ID,
				Name:        existing.Name,
				Description: existing.Description,
				StartDate:   existing.StartDate,
				EndDate:     existing.EndDate,
				Priority:    existing.Priority,
				Status:      existing.Status,
				Color:       existing.Color,
			}
		}

		flags := cmd.Flags()
		overrideString(flags, "name", &input.Name)
		overrideString(flags, "description", &input.Description)
		overrideString(flags, "start", &input.StartDate)
		overrideString(flags, "end", &input.EndDate)
		overrideString(flags, "color", &input.Color)
		if flags.Changed("priority") {
			v, _ := flags.GetString("priority")
			input.Priority = entities.Priority(v)
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			input.Status = entities.ProjectStatus(v)
		}

		project, err := app.projects.CreateOrUpdate(cmd.Context(), input)
		if project == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s saved (%s..%s)\n", project.ID, project.StartDate, project.EndDate)
		return err
	})

	cmd.Flags().String("name", "", "project name")
	cmd.Flags().String("description", "", "project description")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD), start plus 30 days by default")
	cmd.Flags().String("priority", "", "low, medium or high")
	cmd.Flags().String("status", "", "not-started, in-progress, on-hold or completed")
	cmd.Flags().String("color", "", "hex color")
	return cmd
}
