package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/internal/application/services"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

const notePreviewLength = 40

// NewNoteCommand creates the note management command
func NewNoteCommand(opts *RootOptions) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Reminder note commands",
		Long:  "Notes fire once at their date and minute and are deleted when they do",
	}

	noteCmd.AddCommand(newNoteSaveCommand(opts, false))
	noteCmd.AddCommand(newNoteSaveCommand(opts, true))

	noteCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes by alarm time",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTIME\tTITLE\tCONTENT")
			for _, n := range app.notes.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Date, n.Time, n.Title, n.Preview(notePreviewLength))
			}
			return w.Flush()
		}),
	})

	noteCmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.notes.Delete(cmd.Context(), idArg(args)); settled(err) != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note %s deleted\n", args[0])
			return nil
		}),
	})

	return noteCmd
}

func newNoteSaveCommand(opts *RootOptions, editing bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
	}
	if editing {
		cmd.Use = "edit <id>"
		cmd.Short = "Edit a note; unset flags keep their current value"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
		var input services.NoteInput
		if editing {
			id := idArg(args)
			found := false
			for _, n := range app.notes.List() {
				if entities.SameID(n.ID, id) {
					input = services.NoteInput{ID: n.ID, Title: n.Title, Content: n.Content, Date: n.Date, Time: n.Time}
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("note %s not found", id)
			}
		}

		flags := cmd.Flags()
		overrideString(flags, "title", &input.Title)
		overrideString(flags, "content", &input.Content)
		overrideString(flags, "date", &input.Date)
		overrideString(flags, "time", &input.Time)

		note, err := app.notes.CreateOrUpdate(cmd.Context(), input)
		if note == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %s set for %s %s\n", note.ID, note.Date, note.Time)
		return err
	})

	cmd.Flags().String("title", "", "note title")
	cmd.Flags().String("content", "", "note content")
	cmd.Flags().String("date", "", "alarm date (YYYY-MM-DD)")
	cmd.Flags().String("time", "", "alarm time (HH:MM)")
	return cmd
}
