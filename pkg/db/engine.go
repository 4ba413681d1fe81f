package db

import "strings"

// Engine identifies a supported database engine.
type Engine string

const (
	EnginePostgres Engine = "postgresql"
	EngineMySQL    Engine = "mysql"
)

// Driver registration names understood by database/sql.
const (
	DriverPgx   = "pgx"      // github.com/jackc/pgx/v5/stdlib
	DriverPq    = "postgres" // github.com/lib/pq
	DriverMySQL = "mysql"    // github.com/go-sql-driver/mysql
)

// ParseEngine normalizes a DB_TYPE value.
// Unknown values fall back to PostgreSQL; ok reports whether s was recognized.
// An empty value selects the default engine and counts as recognized.
func ParseEngine(s string) (e Engine, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "postgres", "postgresql", "pgsql", "psql":
		return EnginePostgres, true
	case "mysql":
		return EngineMySQL, true
	default:
		return EnginePostgres, false
	}
}

func (e Engine) String() string {
	return string(e)
}

// DefaultPort returns the well-known port of the engine.
func (e Engine) DefaultPort() int {
	if e == EngineMySQL {
		return 3306
	}
	return 5432
}

// DefaultDatabase returns the database every fresh installation of the engine has.
func (e Engine) DefaultDatabase() string {
	if e == EngineMySQL {
		return "mysql"
	}
	return "postgres"
}

// DefaultDriver returns the database/sql driver name used when none is configured.
func (e Engine) DefaultDriver() string {
	if e == EngineMySQL {
		return DriverMySQL
	}
	return DriverPgx
}

// driverEngine reports the engine a known driver speaks to.
// Drivers registered by other packages are not known and report false.
func driverEngine(name string) (Engine, bool) {
	switch name {
	case DriverPgx, DriverPq:
		return EnginePostgres, true
	case DriverMySQL:
		return EngineMySQL, true
	default:
		return "", false
	}
}

// driverPackage maps a driver name to the Go module that provides it.
func driverPackage(name string) string {
	switch name {
	case DriverPgx:
		return "github.com/jackc/pgx/v5/stdlib"
	case DriverPq:
		return "github.com/lib/pq"
	case DriverMySQL:
		return "github.com/go-sql-driver/mysql"
	default:
		return ""
	}
}
