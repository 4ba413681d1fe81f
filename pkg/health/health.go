package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dbhealth/pkg/db"
	"github.com/dmitrymomot/dbhealth/pkg/logger"
)

const (
	// StatusOK is reported when the liveness query succeeded.
	StatusOK = "ok"
	// StatusError is reported when any step of the check failed.
	StatusError = "error"

	// StatusHealthy is reported by the process liveness endpoint.
	StatusHealthy = "healthy"
)

// Hints shown next to a failed check.
const (
	HintConnection    = "Verify the database is running and reachable from this host, and that DB_HOST, DB_PORT and DB_NAME are correct."
	HintAuth          = "Verify DB_USER and DB_PASSWORD."
	HintMissingDriver = "Set DB_DRIVER to a driver compiled into this binary."
	HintConfig        = "Check DB_HOST/DB_PORT/DB_NAME/DB_USER formatting."
)

// Result is the outcome of one database liveness check.
// It never carries the password: URL is redacted and Message is scrubbed.
type Result struct {
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
	Status    string    `json:"status" yaml:"status"`
	Engine    string    `json:"engine" yaml:"engine"`
	Driver    string    `json:"driver" yaml:"driver"`
	Host      string    `json:"host" yaml:"host"`
	Database  string    `json:"database" yaml:"database"`
	Username  string    `json:"username,omitempty" yaml:"username,omitempty"`
	URL       string    `json:"url" yaml:"url"`
	Error     db.Kind   `json:"error,omitempty" yaml:"error,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	Code      string    `json:"code,omitempty" yaml:"code,omitempty"`
	Hint      string    `json:"hint,omitempty" yaml:"hint,omitempty"`
	Port      int       `json:"port" yaml:"port"`
	LatencyMS float64   `json:"latency_ms" yaml:"latency_ms"`
	Success   bool      `json:"success" yaml:"success"`
}

// Checker runs liveness checks against one configured database.
// It is safe for concurrent use; every Check opens its own connection.
type Checker struct {
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
	probeOpts []db.ProbeOption
	cfg       db.Config
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger for check outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records every check in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

// WithProbeOptions passes options through to db.Probe.
func WithProbeOptions(opts ...db.ProbeOption) Option {
	return func(c *Checker) {
		c.probeOpts = append(c.probeOpts, opts...)
	}
}

// WithClock replaces time.Now, for deterministic CheckedAt values in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker creates a Checker for cfg. Unset fields of cfg get engine defaults.
func NewChecker(cfg db.Config, opts ...Option) *Checker {
	c := &Checker{
		cfg:    cfg.WithDefaults(),
		logger: logger.NewNope(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration, defaults applied.
func (c *Checker) Config() db.Config {
	return c.cfg
}

// Check connects to the database, runs the liveness query and reports the outcome.
// Failures are described by the returned Result, never by a panic or error.
func (c *Checker) Check(ctx context.Context) *Result {
	start := c.now()
	err := db.Probe(ctx, c.cfg, c.probeOpts...)
	latency := c.now().Sub(start)

	r := newResult(c.cfg, start)
	r.LatencyMS = float64(latency.Microseconds()) / 1000
	if err != nil {
		r.fail(db.KindOf(err), db.Message(err, c.cfg.Password))
		r.Code = db.ErrorCode(err)
	}

	c.metrics.ObserveResult(r)
	c.log(ctx, r)
	return r
}

func (c *Checker) log(ctx context.Context, r *Result) {
	attrs := []any{
		slog.String("engine", r.Engine),
		slog.String("url", r.URL),
		slog.Float64("latency_ms", r.LatencyMS),
	}
	if r.Success {
		c.logger.DebugContext(ctx, "database check passed", attrs...)
		return
	}
	attrs = append(attrs,
		slog.String("error", string(r.Error)),
		slog.String("message", r.Message),
	)
	if r.Code != "" {
		attrs = append(attrs, slog.String("code", r.Code))
	}
	c.logger.WarnContext(ctx, "database check failed", attrs...)
}

// ConfigErrorResult describes a configuration that could not be loaded.
// cfg holds whatever was parsed so far and may be the zero value.
func ConfigErrorResult(cfg db.Config, err error) *Result {
	r := newResult(cfg.WithDefaults(), time.Now())
	r.fail(db.KindConfig, db.Message(err, cfg.Password))
	return r
}

func newResult(cfg db.Config, at time.Time) *Result {
	return &Result{
		Success:   true,
		Status:    StatusOK,
		Engine:    cfg.Engine.String(),
		Driver:    cfg.Driver,
		Host:      cfg.Host,
		Port:      cfg.Port,
		Database:  cfg.Name,
		Username:  cfg.User,
		URL:       cfg.RedactedURL(),
		CheckedAt: at.UTC(),
	}
}

func (r *Result) fail(kind db.Kind, message string) {
	r.Success = false
	r.Status = StatusError
	r.Error = kind
	r.Message = message
	r.Hint = hintFor(kind)
}

func hintFor(kind db.Kind) string {
	switch kind {
	case db.KindConnection:
		return HintConnection
	case db.KindAuth:
		return HintAuth
	case db.KindMissingDriver:
		return HintMissingDriver
	case db.KindConfig:
		return HintConfig
	default:
		return ""
	}
}

// Err returns nil for a successful check and an error wrapping ErrCheckFailed otherwise.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.Join(ErrCheckFailed, fmt.Errorf("%s: %s", r.Error, r.Message))
}
