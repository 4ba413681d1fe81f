package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	// Drivers the probe can use out of the box.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// LivenessQuery is accepted by every supported engine and touches no tables.
const LivenessQuery = "SELECT 1"

// Opener opens a database handle. sql.Open satisfies it.
type Opener func(driverName, dsn string) (*sql.DB, error)

// ProbeOption configures Probe.
type ProbeOption func(*probeOptions)

type probeOptions struct {
	open Opener
}

// WithOpener replaces sql.Open, e.g. with a handle backed by sqlmock in tests.
func WithOpener(open Opener) ProbeOption {
	return func(o *probeOptions) {
		if open != nil {
			o.open = open
		}
	}
}

// DriverRegistered reports whether database/sql knows a driver by that name.
func DriverRegistered(name string) bool {
	return slices.Contains(sql.Drivers(), name)
}

// Probe opens a dedicated connection to the database described by cfg, runs
// LivenessQuery and releases everything before returning.
// The returned error, if any, is joined with one of the package sentinels; use KindOf to classify it.
func Probe(ctx context.Context, cfg Config, opts ...ProbeOption) error {
	o := &probeOptions{open: sql.Open}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if !DriverRegistered(cfg.Driver) {
		return missingDriverError(cfg)
	}

	handle, err := o.open(cfg.Driver, cfg.DSN())
	if err != nil {
		return classify(phaseConnect, err)
	}
	defer func() { _ = handle.Close() }()
	handle.SetMaxOpenConns(1)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	conn, err := handle.Conn(connectCtx)
	cancel()
	if err != nil {
		return classify(phaseConnect, err)
	}
	defer func() { _ = conn.Close() }()

	var one int
	if err := conn.QueryRowContext(ctx, LivenessQuery).Scan(&one); err != nil {
		return classify(phaseQuery, err)
	}
	if one != 1 {
		return errors.Join(ErrUnexpectedResult, fmt.Errorf("got %d, want 1", one))
	}
	return nil
}

func missingDriverError(cfg Config) error {
	hint := "the driver for " + cfg.Engine.String()
	if pkg := driverPackage(cfg.Driver); pkg != "" {
		hint = pkg
	}
	return errors.Join(ErrMissingDriver, fmt.Errorf(
		"database driver %q not found for %s. Install the appropriate driver (%s) by importing it in the binary, "+
			"or set DB_DRIVER to one of: %s",
		cfg.Driver, cfg.Engine, hint, knownDrivers(cfg.Engine),
	))
}

func knownDrivers(e Engine) string {
	if e == EngineMySQL {
		return DriverMySQL
	}
	return DriverPgx + ", " + DriverPq
}
