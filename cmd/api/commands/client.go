package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayplanner/internal/adapters/localstore"
	"github.com/taskmaster/dayplanner/internal/adapters/remote"
	"github.com/taskmaster/dayplanner/internal/application/reconcile"
	"github.com/taskmaster/dayplanner/internal/application/services"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
	"github.com/taskmaster/dayplanner/internal/infrastructure/device"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/infrastructure/metrics"
	"github.com/taskmaster/dayplanner/internal/ports"
)

// clientApp is one loaded planner session plus the services acting on it.
type clientApp struct {
	cfg      *config.Config
	logger   *logger.Logger
	deviceID string
	local    *localstore.Store
	remote   *remote.Client
	metrics  *metrics.Metrics
	session  *reconcile.Session

	tasks    *services.TaskService
	notes    *services.NoteService
	projects *services.ProjectService
	prefs    *services.PreferenceService
}

// newClientApp loads configuration, resolves the device id, probes the
// backend and loads every collection. Logs go to stderr so command output
// stays clean.
func newClientApp(ctx context.Context, opts *RootOptions, stderr io.Writer) (*clientApp, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := cfg.Logger
	if logCfg.Output != "file" {
		logCfg.Output = "stderr"
	}
	appLogger, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	local := localstore.New(cfg.Client.LocalDir, cfg.Client.LocalQuotaBytes, appLogger)
	deviceID := device.GetOrCreate(ctx, local, appLogger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var (
		client      *remote.Client
		remoteStore ports.RemoteStore
	)
	if cfg.Client.RemoteEnabled {
		client = remote.NewClient(cfg.Client.ServerURL, deviceID, appLogger,
			remote.WithTimeout(cfg.Client.RequestTimeout),
			remote.WithMetrics(m),
		)
		remoteStore = client
	}

	session := reconcile.NewSession(remoteStore, local, ports.SystemClock{}, appLogger.WithDevice(deviceID))
	session.Subscribe(func(ev reconcile.Event) {
		if ev.Type == reconcile.PersistenceWarning {
			fmt.Fprintf(stderr, "warning: %s were not saved: %v\n", ev.Kind, ev.Err)
		}
	})

	session.Start(ctx)
	if err := session.LoadAll(ctx); err != nil {
		appLogger.Warnw("Failed to write back normalized tasks", "error", err)
	}

	validate := services.NewValidator()
	return &clientApp{
		cfg:      cfg,
		logger:   appLogger,
		deviceID: deviceID,
		local:    local,
		remote:   client,
		metrics:  m,
		session:  session,
		tasks:    services.NewTaskService(session, validate, appLogger),
		notes:    services.NewNoteService(session, validate, appLogger),
		projects: services.NewProjectService(session, validate, appLogger),
		prefs:    services.NewPreferenceService(session, validate, appLogger),
	}, nil
}

// requireRemote returns the backend client, or an error when the session
// never talks to the backend.
func (a *clientApp) requireRemote() (*remote.Client, error) {
	if a.remote == nil {
		return nil, fmt.Errorf("backend disabled (client.remote_enabled=false): %w", entities.ErrRemoteUnavailable)
	}
	return a.remote, nil
}

func (a *clientApp) Close() {
	_ = a.logger.Close()
}

// withClient runs fn against a freshly loaded client session.
func withClient(opts *RootOptions, fn func(cmd *cobra.Command, app *clientApp, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp(cmd.Context(), opts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer app.Close()
		return settled(fn(cmd, app, args))
	}
}

// settled drops persistence failures: the change is applied in memory and
// the session already reported the failed write through its warning event.
func settled(err error) error {
	if err == nil || onlyPersistence(err) {
		return nil
	}
	return err
}

// onlyPersistence reports whether every leaf of err's tree is a
// *entities.PersistenceError.
func onlyPersistence(err error) bool {
	switch e := err.(type) {
	case *entities.PersistenceError:
		return true
	case interface{ Unwrap() []error }:
		errs := e.Unwrap()
		for _, inner := range errs {
			if !onlyPersistence(inner) {
				return false
			}
		}
		return len(errs) > 0
	case interface{ Unwrap() error }:
		inner := e.Unwrap()
		return inner != nil && onlyPersistence(inner)
	}
	return false
}

func idArg(args []string) entities.ID {
	return entities.ID(strings.TrimSpace(args[0]))
}

func checkMark(done bool) string {
	if done {
		return "x"
	}
	return " "
}
