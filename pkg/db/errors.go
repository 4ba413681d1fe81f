package db

import "errors"

var (
	ErrInvalidConfig    = errors.New("db: invalid configuration")
	ErrMissingDriver    = errors.New("db: database driver not registered")
	ErrConnectionFailed = errors.New("db: failed to connect to database")
	ErrAuthFailed       = errors.New("db: authentication failed")
	ErrQueryFailed      = errors.New("db: liveness query failed")
	ErrUnexpectedResult = errors.New("db: liveness query returned unexpected result")
)

// Kind names an error class in check results.
type Kind string

const (
	KindConfig        Kind = "ConfigError"
	KindMissingDriver Kind = "MissingDriverError"
	KindConnection    Kind = "ConnectionError"
	KindAuth          Kind = "AuthError"
	KindQuery         Kind = "QueryError"
)

// KindOf returns the class of an error produced by this package.
// Errors not produced here report KindConnection, the most common cause of a failed probe.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return KindConfig
	case errors.Is(err, ErrMissingDriver):
		return KindMissingDriver
	case errors.Is(err, ErrAuthFailed):
		return KindAuth
	case errors.Is(err, ErrQueryFailed), errors.Is(err, ErrUnexpectedResult):
		return KindQuery
	default:
		return KindConnection
	}
}
