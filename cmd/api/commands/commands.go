package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/internal/adapters/repository"
	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/infrastructure/cache"
	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
	"github.com/taskmaster/dayplanner/internal/infrastructure/database"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/infrastructure/metrics"
	"github.com/taskmaster/dayplanner/internal/infrastructure/server"
	"github.com/taskmaster/dayplanner/internal/ports"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

// RootOptions carries the persistent flags shared by every command.
type RootOptions struct {
	ConfigPath string
}

// NewServeCommand creates the serve command
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the day planner backend",
		Long:  "Start the HTTP document server. Storage is chosen by storage.driver (file, postgres or redis).",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts)
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the postgres document table (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd, opts)
		},
	})

	return migrateCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the day planner version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dayplanner %s\n", Version)
		},
	}
}

func runServer(ctx context.Context, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	repo, closeRepo, err := openRepository(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	documentService := documents.NewService(repo, ports.SystemClock{}, m, appLogger)
	srv := server.New(cfg, documentService, m, appLogger)

	appLogger.Infow("Starting day planner server",
		"address", cfg.Server.GetAddr(),
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Driver,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// openRepository builds the document repository named by storage.driver and
// returns a function releasing its connections.
func openRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.DocumentRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.New(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewPostgresDocumentRepository(db), func() { _ = db.Close() }, nil

	case config.StorageRedis:
		client, err := cache.Connect(ctx, cfg.Redis, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return repository.NewRedisDocumentRepository(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil

	default:
		repo, err := repository.NewFileDocumentRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		log.Infow("Using file storage", "data_dir", cfg.Storage.DataDir)
		return repo, func() {}, nil
	}
}

func openMigrator(ctx context.Context, opts *RootOptions) (*database.Migrator, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(ctx, cfg.Database, appLogger)
	if err != nil {
		_ = appLogger.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator, err := database.NewMigrator(db)
	if err != nil {
		_ = db.Close()
		_ = appLogger.Close()
		return nil, nil, err
	}
	return migrator, func() {
		_ = db.Close()
		_ = appLogger.Close()
	}, nil
}

func runMigration(cmd *cobra.Command, opts *RootOptions, direction string) error {
	migrator, closeDB, err := openMigrator(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer closeDB()

	var changed bool
	switch direction {
	case "up":
		changed, err = migrator.Up()
	case "down":
		changed, err = migrator.Down()
	default:
		err = errors.New("unknown migration direction " + direction)
	}
	if err != nil {
		return err
	}

	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
	}
	return nil
}

func showMigrationVersion(cmd *cobra.Command, opts *RootOptions) error {
	migrator, closeDB, err := openMigrator(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer closeDB()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
	return nil
}
