// Package cli implements the dbhealth command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/dbhealth/internal/config"
	"github.com/dmitrymomot/dbhealth/internal/server"
	"github.com/dmitrymomot/dbhealth/pkg/db"
	"github.com/dmitrymomot/dbhealth/pkg/logger"
)

// Process exit codes.
const (
	ExitCodeOK          = 0
	ExitCodeError       = 1
	ExitCodeCheckFailed = 2
)

const (
	defaultEnvFile = ".env"
	flushTimeout   = 2 * time.Second
)

// ExitError carries a specific exit code out of a command.
// Execute does not print it; the command already reported the failure.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var errFlushTimeout = errors.New("cli: timed out flushing buffered log events")

// flushLogs waits for buffered Sentry events within flushTimeout or the ctx deadline, whichever is sooner.
func flushLogs(ctx context.Context) error {
	timeout := flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if !logger.Flush(timeout) {
		return errFlushTimeout
	}
	return nil
}

// Option configures Execute.
type Option func(*app)

// WithProbeOptions passes options to every database probe, e.g. a test opener.
func WithProbeOptions(opts ...db.ProbeOption) Option {
	return func(a *app) {
		a.probeOpts = append(a.probeOpts, opts...)
	}
}

// app holds the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
	level  *slog.LevelVar
	cfg    *config.Config
	// cfgErr is set when configuration could not be loaded. Commands decide
	// how to report it.
	cfgErr error

	// onListen is called with the bound address once serve is listening.
	onListen func(addr string)

	configPath string
	envFile    string
	logLevel   string
	probeOpts  []db.ProbeOption
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...Option) int {
	a := &app{stdout: stdout, stderr: stderr, log: logger.NewNope(), level: new(slog.LevelVar)}
	for _, opt := range opts {
		opt(a)
	}

	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\nRun '%s --help' for usage.\n", err, cmd.Name())
	return ExitCodeError
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbhealth",
		Short: "Database liveness checker",
		Long: `dbhealth checks whether a PostgreSQL or MySQL database is reachable and
responds to a trivial query.

The target is configured through DB_TYPE, DB_HOST, DB_PORT, DB_USER,
DB_PASSWORD and DB_NAME. Without a subcommand the HTTP server is started.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), defaultServeOptions())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "optional YAML config file; environment variables take precedence")
	flags.StringVar(&a.envFile, "env-file", defaultEnvFile, "dotenv file loaded before configuration; a missing file is ignored")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(a.checkCommand(), a.serveCommand())
	return root
}

// setup loads the environment, configuration and logger before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	a.cfg, a.cfgErr = config.Load(a.configPath)

	var logCfg config.LogConfig
	var sentryCfg config.SentryConfig
	if a.cfg != nil {
		logCfg, sentryCfg = a.cfg.Log, a.cfg.Sentry
	}
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}

	level, err := logger.ParseLevel(logCfg.Level)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(logCfg.Format)
	if err != nil {
		return err
	}
	a.level.Set(level)
	a.log = logger.NewWithSentry(
		logger.Options{Output: a.stderr, Level: a.level, Format: format},
		logger.SentryConfig{DSN: sentryCfg.DSN, Environment: sentryCfg.Environment, MinLevel: slog.LevelWarn},
		server.RequestIDExtractor(),
	)

	if a.cfg != nil {
		for _, w := range a.cfg.Warnings {
			a.log.Warn(w)
		}
	}
	return nil
}
