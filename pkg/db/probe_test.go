package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dbhealth/pkg/db"
)

// mockOpener returns an Opener backed by sqlmock along with the mock itself.
func mockOpener(t *testing.T) (db.Opener, sqlmock.Sqlmock) {
	t.Helper()

	handle, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })

	return func(driverName, dsn string) (*sql.DB, error) {
		return handle, nil
	}, mock
}

func TestProbe_Success(t *testing.T) {
	t.Parallel()

	open, mock := mockOpener(t)
	mock.ExpectQuery(db.LivenessQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectClose()

	cfg := db.Config{User: "app", Password: "secret"}.WithDefaults()
	err := db.Probe(context.Background(), cfg, db.WithOpener(open))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProbe_UnexpectedResult(t *testing.T) {
	t.Parallel()

	open, mock := mockOpener(t)
	mock.ExpectQuery(db.LivenessQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(2))
	mock.ExpectClose()

	err := db.Probe(context.Background(), db.Config{}.WithDefaults(), db.WithOpener(open))
	require.ErrorIs(t, err, db.ErrUnexpectedResult)
	require.Equal(t, db.KindQuery, db.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProbe_AuthFailure(t *testing.T) {
	t.Parallel()

	open, mock := mockOpener(t)
	mock.ExpectQuery(db.LivenessQuery).WillReturnError(&pgconn.PgError{
		Severity: "FATAL",
		Code:     "28P01",
		Message:  `password authentication failed for user "app"`,
	})
	mock.ExpectClose()

	cfg := db.Config{User: "app", Password: "wrong"}.WithDefaults()
	err := db.Probe(context.Background(), cfg, db.WithOpener(open))
	require.ErrorIs(t, err, db.ErrAuthFailed)
	require.Equal(t, db.KindAuth, db.KindOf(err))
	require.Equal(t, "28P01", db.ErrorCode(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProbe_QueryFailureRedactsPassword(t *testing.T) {
	t.Parallel()

	const password = "s3cr3t-value"

	open, mock := mockOpener(t)
	mock.ExpectQuery(db.LivenessQuery).WillReturnError(
		fmt.Errorf("cannot use dsn postgres://app:%s@localhost/app", password),
	)
	mock.ExpectClose()

	cfg := db.Config{User: "app", Password: password}.WithDefaults()
	err := db.Probe(context.Background(), cfg, db.WithOpener(open))
	require.ErrorIs(t, err, db.ErrQueryFailed)

	msg := db.Message(err, cfg.Password)
	require.NotContains(t, msg, password)
	require.Contains(t, msg, db.RedactedPassword)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProbe_OpenFailure(t *testing.T) {
	t.Parallel()

	open := func(string, string) (*sql.DB, error) {
		return nil, errors.New("invalid dsn")
	}

	err := db.Probe(context.Background(), db.Config{}.WithDefaults(), db.WithOpener(open))
	require.ErrorIs(t, err, db.ErrConnectionFailed)
	require.Equal(t, db.KindConnection, db.KindOf(err))
}

func TestProbe_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := db.Config{}.WithDefaults()
	cfg.Port = 0

	err := db.Probe(context.Background(), cfg)
	require.ErrorIs(t, err, db.ErrInvalidConfig)
	require.Equal(t, db.KindConfig, db.KindOf(err))
}

func TestProbe_MissingDriver(t *testing.T) {
	t.Parallel()

	require.True(t, db.DriverRegistered(db.DriverPgx))
	require.True(t, db.DriverRegistered(db.DriverPq))
	require.True(t, db.DriverRegistered(db.DriverMySQL))
	require.False(t, db.DriverRegistered("nonexistent"))

	cfg := db.Config{Driver: "nonexistent"}.WithDefaults()
	err := db.Probe(context.Background(), cfg)
	require.ErrorIs(t, err, db.ErrMissingDriver)
	require.Equal(t, db.KindMissingDriver, db.KindOf(err))
	require.Contains(t, err.Error(), "Install")
	require.Contains(t, err.Error(), "nonexistent")
}

func TestProbe_ConnectionRefused(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		engine db.Engine
		driver string
	}{
		{name: "pgx", engine: db.EnginePostgres, driver: db.DriverPgx},
		{name: "lib/pq", engine: db.EnginePostgres, driver: db.DriverPq},
		{name: "mysql", engine: db.EngineMySQL, driver: db.DriverMySQL},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Port 1 is reserved and nothing listens on it.
			cfg := db.Config{
				Engine:         tc.engine,
				Driver:         tc.driver,
				Host:           "127.0.0.1",
				Port:           1,
				User:           "app",
				Password:       "secret",
				SSLMode:        "disable",
				ConnectTimeout: 2 * time.Second,
			}.WithDefaults()

			err := db.Probe(context.Background(), cfg)
			require.Error(t, err)
			require.Equal(t, db.KindConnection, db.KindOf(err))
			require.NotContains(t, db.Message(err, cfg.Password), cfg.Password)
		})
	}
}

func TestProbe_ContextCanceled(t *testing.T) {
	t.Parallel()

	open, mock := mockOpener(t)
	mock.ExpectClose()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.Probe(ctx, db.Config{}.WithDefaults(), db.WithOpener(open))
	require.ErrorIs(t, err, db.ErrConnectionFailed)
	require.Equal(t, db.KindConnection, db.KindOf(err))
}
