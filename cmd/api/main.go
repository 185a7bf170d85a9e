package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/cmd/api/commands"
)

// @title Day Planner API
// @version 1.0
// @description Per-device document storage backing the day planner client.

// @host localhost:3000
// @BasePath /api

func main() {
	opts := &commands.RootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dayplanner",
		Short:         "Day planner server and client",
		Long:          `Day planner keeps dated tasks, reminder notes and projects per device. It runs the backend document server and a command line client that falls back to local storage when the backend is unreachable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a config file (yaml, json or toml)")

	rootCmd.AddCommand(commands.NewServeCommand(opts))
	rootCmd.AddCommand(commands.NewMigrateCommand(opts))
	rootCmd.AddCommand(commands.NewTaskCommand(opts))
	rootCmd.AddCommand(commands.NewNoteCommand(opts))
	rootCmd.AddCommand(commands.NewProjectCommand(opts))
	rootCmd.AddCommand(commands.NewPrefsCommand(opts))
	rootCmd.AddCommand(commands.NewAlarmsCommand(opts))
	rootCmd.AddCommand(commands.NewSyncCommand(opts))
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
