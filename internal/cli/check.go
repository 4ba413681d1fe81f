package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/dbhealth/pkg/db"
	"github.com/dmitrymomot/dbhealth/pkg/health"
)

type checkOptions struct {
	format  string
	timeout time.Duration
}

func (a *app) checkCommand() *cobra.Command {
	opts := checkOptions{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a liveness check against the configured database",
		Long: `Run a liveness check against the configured database and print the result.

Exits with status 0 when the database answered and 2 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json or yaml")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "connect timeout (overrides DB_CONNECT_TIMEOUT)")
	return cmd
}

func (a *app) check(ctx context.Context, opts checkOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	if opts.timeout < 0 {
		return fmt.Errorf("--timeout must not be negative, got %s", opts.timeout)
	}
	defer func() { _ = flushLogs(context.WithoutCancel(ctx)) }()

	var res *health.Result
	if a.cfgErr != nil {
		var partial db.Config
		if a.cfg != nil {
			partial = a.cfg.DB
		}
		a.log.ErrorContext(ctx, "invalid configuration", "error", db.Message(a.cfgErr, partial.Password))
		res = health.ConfigErrorResult(partial, a.cfgErr)
	} else {
		cfg := a.cfg.DB
		if opts.timeout > 0 {
			cfg.ConnectTimeout = opts.timeout
		}
		checker := health.NewChecker(cfg,
			health.WithLogger(a.log),
			health.WithProbeOptions(a.probeOpts...),
		)
		res = checker.Check(ctx)
	}

	if err := writeResult(a.stdout, res, opts.format); err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return &ExitError{Code: ExitCodeCheckFailed, Err: err}
	}
	return nil
}
