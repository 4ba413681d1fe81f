// Package db probes PostgreSQL and MySQL servers for liveness.
//
// A probe opens one dedicated connection, runs [LivenessQuery] and closes the
// connection again. Nothing is pooled or retried between probes, so each call
// reflects the state of the server at that moment.
//
// # Configuration
//
// [Config] holds the connection parameters. Unset fields get engine-specific
// defaults from [Config.WithDefaults]:
//
//	Engine          postgresql            | mysql
//	Driver          pgx                   | mysql
//	Host            localhost
//	Port            5432                  | 3306
//	Name            postgres              | mysql
//	ConnectTimeout  5s
//
// [ParseEngine] accepts the aliases postgres, postgresql, pgsql and psql for
// PostgreSQL. Unknown values fall back to PostgreSQL.
//
// # Usage
//
//	cfg := db.Config{Engine: db.EngineMySQL, User: "app", Password: secret}.WithDefaults()
//	if err := db.Probe(ctx, cfg); err != nil {
//		log.Printf("%s: %s", db.KindOf(err), db.Message(err, cfg.Password))
//	}
//
// # Drivers
//
// The package registers three database/sql drivers: pgx ([github.com/jackc/pgx/v5/stdlib]),
// postgres ([github.com/lib/pq]) and mysql ([github.com/go-sql-driver/mysql]).
// A Config naming any other driver fails with [ErrMissingDriver] unless the
// binary imports that driver itself.
//
// # Error Handling
//
// Probe errors are joined with exactly one sentinel:
//
//   - [ErrInvalidConfig] - the configuration can never connect
//   - [ErrMissingDriver] - the driver is not registered
//   - [ErrConnectionFailed] - network, timeout, unknown database or other connect failures
//   - [ErrAuthFailed] - credentials rejected (SQLSTATE class 28, MySQL 1044/1045/1698)
//   - [ErrQueryFailed], [ErrUnexpectedResult] - the liveness query itself failed
//
// [KindOf] maps them to the names used in check results and [ErrorCode]
// extracts the server error code. Connection strings containing passwords are
// never part of an error; use [Config.RedactedURL] and [Message] for display.
package db
