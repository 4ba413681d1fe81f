package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// phase tells the classifier where in the probe an error surfaced.
type phase int

const (
	phaseConnect phase = iota
	phaseQuery
)

// classify joins err with the sentinel describing its class.
func classify(p phase, err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(sentinelFor(p, err), err)
}

func sentinelFor(p phase, err error) error {
	if code, ok := sqlState(err); ok {
		return sentinelForSQLState(p, code)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return sentinelForMySQL(p, myErr.Number)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrConnectionFailed
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return ErrConnectionFailed
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrConnectionFailed
	}

	if p == phaseQuery {
		return ErrQueryFailed
	}
	return ErrConnectionFailed
}

// sentinelForSQLState maps a PostgreSQL SQLSTATE code.
// Class 28 is invalid_authorization_specification, class 08 connection_exception.
func sentinelForSQLState(p phase, code string) error {
	switch {
	case strings.HasPrefix(code, "28"):
		return ErrAuthFailed
	case strings.HasPrefix(code, "08"),
		strings.HasPrefix(code, "57P"), // admin shutdown, cannot connect now
		code == "53300",                // too_many_connections
		code == "3D000":                // invalid_catalog_name: database does not exist
		return ErrConnectionFailed
	case p == phaseQuery:
		return ErrQueryFailed
	default:
		return ErrConnectionFailed
	}
}

func sentinelForMySQL(p phase, number uint16) error {
	switch number {
	case 1044, // ER_DBACCESS_DENIED_ERROR
		1045, // ER_ACCESS_DENIED_ERROR
		1130, // ER_HOST_NOT_PRIVILEGED
		1251, // ER_NOT_SUPPORTED_AUTH_MODE
		1698: // ER_ACCESS_DENIED_NO_PASSWORD_ERROR
		return ErrAuthFailed
	case 1040, // ER_CON_COUNT_ERROR
		1049, // ER_BAD_DB_ERROR
		1129: // ER_HOST_IS_BLOCKED
		return ErrConnectionFailed
	}
	if p == phaseQuery {
		return ErrQueryFailed
	}
	return ErrConnectionFailed
}

// sqlState extracts a SQLSTATE from pgx or lib/pq errors.
func sqlState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// ErrorCode returns the server-side error code carried by err:
// the SQLSTATE for PostgreSQL, the error number for MySQL, or "" when none is present.
func ErrorCode(err error) string {
	if code, ok := sqlState(err); ok {
		return code
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number))
	}
	return ""
}
