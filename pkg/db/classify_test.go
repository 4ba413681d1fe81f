package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}

	testCases := []struct {
		name  string
		phase phase
		err   error
		want  Kind
		code  string
	}{
		{
			name:  "pgx password authentication failed",
			phase: phaseConnect,
			err:   fmt.Errorf("failed to connect: %w", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}),
			want:  KindAuth,
			code:  "28P01",
		},
		{
			name:  "pgx invalid authorization during query",
			phase: phaseQuery,
			err:   &pgconn.PgError{Code: "28000"},
			want:  KindAuth,
			code:  "28000",
		},
		{
			name:  "pgx database does not exist",
			phase: phaseConnect,
			err:   &pgconn.PgError{Code: "3D000"},
			want:  KindConnection,
			code:  "3D000",
		},
		{
			name:  "pgx server shutting down during query",
			phase: phaseQuery,
			err:   &pgconn.PgError{Code: "57P01"},
			want:  KindConnection,
			code:  "57P01",
		},
		{
			name:  "pgx syntax error during query",
			phase: phaseQuery,
			err:   &pgconn.PgError{Code: "42601"},
			want:  KindQuery,
			code:  "42601",
		},
		{
			name:  "lib/pq password authentication failed",
			phase: phaseConnect,
			err:   &pq.Error{Code: "28P01"},
			want:  KindAuth,
			code:  "28P01",
		},
		{
			name:  "mysql access denied",
			phase: phaseConnect,
			err:   &mysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'@'localhost'"},
			want:  KindAuth,
			code:  "1045",
		},
		{
			name:  "mysql unknown database",
			phase: phaseConnect,
			err:   &mysql.MySQLError{Number: 1049},
			want:  KindConnection,
			code:  "1049",
		},
		{
			name:  "mysql other error during query",
			phase: phaseQuery,
			err:   &mysql.MySQLError{Number: 1064},
			want:  KindQuery,
			code:  "1064",
		},
		{
			name:  "network error during query",
			phase: phaseQuery,
			err:   refused,
			want:  KindConnection,
		},
		{
			name:  "deadline exceeded",
			phase: phaseQuery,
			err:   fmt.Errorf("timeout: %w", context.DeadlineExceeded),
			want:  KindConnection,
		},
		{
			name:  "bad connection",
			phase: phaseQuery,
			err:   driver.ErrBadConn,
			want:  KindConnection,
		},
		{
			name:  "unknown error while connecting",
			phase: phaseConnect,
			err:   errors.New("boom"),
			want:  KindConnection,
		},
		{
			name:  "unknown error while querying",
			phase: phaseQuery,
			err:   errors.New("boom"),
			want:  KindQuery,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := classify(tc.phase, tc.err)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.want, KindOf(err))
			require.Equal(t, tc.code, ErrorCode(err))
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	t.Parallel()

	require.NoError(t, classify(phaseConnect, nil))
}

func TestKindOf_Sentinels(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindConfig, KindOf(ErrInvalidConfig))
	require.Equal(t, KindMissingDriver, KindOf(ErrMissingDriver))
	require.Equal(t, KindConnection, KindOf(ErrConnectionFailed))
	require.Equal(t, KindAuth, KindOf(ErrAuthFailed))
	require.Equal(t, KindQuery, KindOf(ErrQueryFailed))
	require.Equal(t, KindQuery, KindOf(ErrUnexpectedResult))
}
