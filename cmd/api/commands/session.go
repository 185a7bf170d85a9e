package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// NewPrefsCommand creates the preferences command
func NewPrefsCommand(opts *RootOptions) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Preference commands",
	}

	prefsCmd.AddCommand(&cobra.Command{
		Use:   "language [en|ar]",
		Short: "Show or set the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			if len(args) == 1 {
				if err := app.prefs.SetLanguage(cmd.Context(), args[0]); settled(err) != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.prefs.Language())
			return nil
		}),
	})

	return prefsCmd
}

// NewAlarmsCommand creates the alarm watcher command
func NewAlarmsCommand(opts *RootOptions) *cobra.Command {
	alarmsCmd := &cobra.Command{
		Use:   "alarms",
		Short: "Note alarm commands",
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Fire note alarms until interrupted",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				interval = app.cfg.Client.AlarmInterval
			}

			out := cmd.OutOrStdout()
			watcher := reconcile.NewAlarmWatcher(app.session, interval, app.logger)
			fmt.Fprintf(out, "Watching %d notes (%s mode)\n", len(app.notes.List()), app.session.Mode())
			return watcher.Run(ctx, func(n entities.Note) {
				fmt.Fprintf(out, "\a[%s %s] %s: %s\n", n.Date, n.Time, n.Title, n.Content)
			})
		}),
	}
	watchCmd.Flags().Duration("interval", 0, "check interval, client.alarm_interval by default")
	alarmsCmd.AddCommand(watchCmd)

	return alarmsCmd
}

// NewSyncCommand creates the sync status and backend inspection commands
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Storage and backend status",
	}

	syncCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the device id, persistence mode and local usage",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			usage, err := app.local.Usage()
			if err != nil {
				return err
			}
			state := app.session.Snapshot()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Device:      %s\n", app.deviceID)
			fmt.Fprintf(out, "Mode:        %s\n", app.session.Mode())
			fmt.Fprintf(out, "Server:      %s (enabled: %t)\n", app.cfg.Client.ServerURL, app.cfg.Client.RemoteEnabled)
			fmt.Fprintf(out, "Local usage: %d / %d bytes\n", usage, app.cfg.Client.LocalQuotaBytes)
			fmt.Fprintf(out, "Tasks:       %d in %d days\n", state.Tasks.Count(), len(state.Tasks))
			fmt.Fprintf(out, "Notes:       %d\n", len(state.Notes))
			fmt.Fprintf(out, "Projects:    %d\n", len(state.Projects))
			if app.metrics != nil {
				outcomes := app.metrics.RemoteOutcomes()
				fmt.Fprintf(out, "Requests:    %d ok, %d failed\n", outcomes["ok"], outcomes["error"])
			}
			fmt.Fprintf(out, "Checked at:  %s\n", app.session.Now().Format(time.RFC3339))
			return nil
		}),
	})

	syncCmd.AddCommand(&cobra.Command{
		Use:   "day DATE",
		Short: "Show the backend copy of one day next to the session's",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			date := strings.TrimSpace(args[0])
			stored, err := client.GetTasksByDate(cmd.Context(), date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d on the backend, %d in this session\n", date, len(stored), len(app.tasks.ListDay(date)))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, t := range stored {
				fmt.Fprintf(w, "%s\t%s-%s\t[%s]\t%s\n", t.ID, t.StartTime, t.EndTime, checkMark(t.Completed), t.Title)
			}
			return w.Flush()
		}),
	})

	syncCmd.AddCommand(&cobra.Command{
		Use:   "project ID",
		Short: "Show the backend copy of one project next to the session's",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(opts, func(cmd *cobra.Command, app *clientApp, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			stored, err := client.GetProject(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s %q (%s), %d linked tasks\n", stored.ID, stored.Name, stored.Status, len(stored.Tasks))
			if local, err := app.projects.Get(stored.ID); err == nil {
				fmt.Fprintf(out, "Session: %s %q (%s), %d linked tasks\n", local.ID, local.Name, local.Status, len(local.Tasks))
			} else {
				fmt.Fprintln(out, "Session: not loaded")
			}
			return nil
		}),
	})

	return syncCmd
}
