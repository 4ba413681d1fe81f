package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/dbhealth/internal/server"
	"github.com/dmitrymomot/dbhealth/pkg/health"
)

type serveOptions struct {
	host            string
	port            int
	debug           bool
	shutdownTimeout time.Duration
}

func defaultServeOptions() serveOptions {
	return serveOptions{
		host:            "0.0.0.0",
		port:            5000,
		shutdownTimeout: 30 * time.Second,
	}
}

func (a *app) serveCommand() *cobra.Command {
	opts := defaultServeOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database check over HTTP (default)",
		Long: `Serve the database check over HTTP.

Routes:
  GET /            service banner
  GET /db/health   database check, 200 when healthy and 503 otherwise
  GET /health/live process liveness
  GET /metrics     Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.host, "host", opts.host, "address to bind")
	flags.IntVarP(&opts.port, "port", "p", opts.port, "port to listen on")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.DurationVar(&opts.shutdownTimeout, "shutdown-timeout", opts.shutdownTimeout, "graceful shutdown timeout")
	return cmd
}

func (a *app) serve(ctx context.Context, opts serveOptions) error {
	if a.cfgErr != nil {
		return a.cfgErr
	}
	if opts.port < 0 || opts.port > 65535 {
		return fmt.Errorf("--port %d is out of range 0-65535", opts.port)
	}

	if opts.debug {
		a.level.Set(slog.LevelDebug)
	}
	log := a.log

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkMetrics := health.NewMetrics()
	if err := checkMetrics.Register(reg); err != nil {
		return err
	}
	httpMetrics := server.NewMetrics()
	if err := httpMetrics.Register(reg); err != nil {
		return err
	}

	checker := health.NewChecker(a.cfg.DB,
		health.WithLogger(log),
		health.WithMetrics(checkMetrics),
		health.WithProbeOptions(a.probeOpts...),
	)
	router := server.NewRouter(checker,
		server.WithLogger(log),
		server.WithMetrics(httpMetrics),
		server.WithGatherer(reg),
	)

	log.Info("database target",
		"engine", checker.Config().Engine.String(),
		"driver", checker.Config().Driver,
		"url", checker.Config().RedactedURL(),
	)

	return server.Run(ctx, server.RunConfig{
		Address:         net.JoinHostPort(opts.host, strconv.Itoa(opts.port)),
		Handler:         router,
		Logger:          log,
		ShutdownTimeout: opts.shutdownTimeout,
		WriteTimeout:    server.WriteTimeoutFor(checker.Config().ConnectTimeout),
		ShutdownHooks:   []func(context.Context) error{flushLogs},
		OnListen: func(addr net.Addr) {
			if a.onListen != nil {
				a.onListen(addr.String())
			}
		},
	})
}
