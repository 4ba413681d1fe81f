package db

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultHost           = "localhost"
	DefaultConnectTimeout = 5 * time.Second
)

// Config describes the database a liveness probe connects to.
// The zero value is usable: WithDefaults fills engine-specific defaults.
type Config struct {
	// Engine selects the connection string format and error classification.
	Engine Engine

	// Driver is the database/sql driver name. Defaults to Engine.DefaultDriver().
	Driver string

	Host     string
	User     string
	Password string
	Name     string

	// SSLMode is passed to PostgreSQL drivers as sslmode. Empty keeps the driver default.
	SSLMode string

	Port int

	// ConnectTimeout bounds connection establishment. It is applied both as a
	// context deadline and as a driver connection parameter.
	ConnectTimeout time.Duration
}

// WithDefaults returns a copy of c with unset fields replaced by engine-specific defaults.
func (c Config) WithDefaults() Config {
	if c.Engine == "" {
		c.Engine = EnginePostgres
	}
	if c.Driver == "" {
		c.Driver = c.Engine.DefaultDriver()
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = c.Engine.DefaultPort()
	}
	if c.Name == "" {
		c.Name = c.Engine.DefaultDatabase()
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	return c
}

// Validate reports configuration that can never produce a working connection.
func (c Config) Validate() error {
	switch c.Engine {
	case EnginePostgres, EngineMySQL:
	default:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("unsupported engine %q", c.Engine))
	}
	if engine, ok := driverEngine(c.Driver); ok && engine != c.Engine {
		return errors.Join(ErrInvalidConfig, fmt.Errorf(
			"driver %q connects to %s, not %s; set DB_DRIVER to one of: %s",
			c.Driver, engine, c.Engine, knownDrivers(c.Engine),
		))
	}
	if c.Host == "" {
		return errors.Join(ErrInvalidConfig, errors.New("host is empty"))
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("port %d is out of range 1-65535", c.Port))
	}
	if c.ConnectTimeout <= 0 {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("connect timeout must be positive, got %s", c.ConnectTimeout))
	}
	return nil
}
