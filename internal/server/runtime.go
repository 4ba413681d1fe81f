package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/dbhealth/pkg/logger"
)

const (
	defaultAddress           = "0.0.0.0:5000"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second

	// writeTimeoutMargin covers the liveness query and response encoding after connecting.
	writeTimeoutMargin = 5 * time.Second
)

// WriteTimeoutFor returns a write timeout long enough for a check whose
// connection phase may take up to connectTimeout.
func WriteTimeoutFor(connectTimeout time.Duration) time.Duration {
	return max(defaultWriteTimeout, connectTimeout+writeTimeoutMargin)
}

// RunConfig holds configuration for running the HTTP server.
type RunConfig struct {
	Handler http.Handler
	Logger  *slog.Logger
	// Address defaults to 0.0.0.0:5000.
	Address string
	// WriteTimeout defaults to 30s. Use WriteTimeoutFor to fit the check timeout.
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// ShutdownHooks run after the server stopped accepting requests.
	ShutdownHooks []func(context.Context) error
	// OnListen, if set, receives the bound address once the listener is open.
	OnListen func(addr net.Addr)
}

// Run starts the HTTP server and blocks until ctx is canceled, SIGINT or
// SIGTERM arrives, or the server fails. Shutdown is graceful within ShutdownTimeout.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNope()
	}

	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           cfg.Handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Listen first to get actual address
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	if cfg.OnListen != nil {
		cfg.OnListen(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range cfg.ShutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
