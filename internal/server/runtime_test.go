package server_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dbhealth/internal/server"
)

func TestRun_GracefulShutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan net.Addr, 1)
	hookCalled := make(chan struct{}, 1)
	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Run(ctx, server.RunConfig{
			Address: "127.0.0.1:0",
			Handler: server.NewRouter(stubProber{result: okResult}),
			OnListen: func(addr net.Addr) {
				addrCh <- addr
			},
			ShutdownTimeout: 5 * time.Second,
			ShutdownHooks: []func(context.Context) error{
				func(context.Context) error {
					hookCalled <- struct{}{}
					return nil
				},
			},
		})
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr.String() + server.RouteDBHealth)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	require.Len(t, hookCalled, 1)
}

func TestRun_ShutdownHookError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	hookErr := errors.New("hook failed")

	err := server.Run(ctx, server.RunConfig{
		Address:  "127.0.0.1:0",
		Handler:  http.NotFoundHandler(),
		OnListen: func(net.Addr) { cancel() },
		ShutdownHooks: []func(context.Context) error{
			func(context.Context) error { return hookErr },
		},
	})
	require.ErrorIs(t, err, hookErr)
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	err = server.Run(context.Background(), server.RunConfig{
		Address: ln.Addr().String(),
		Handler: http.NotFoundHandler(),
	})
	require.Error(t, err)
}

func TestWriteTimeoutFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		connect time.Duration
		want    time.Duration
	}{
		{name: "default connect timeout keeps the server default", connect: 5 * time.Second, want: 30 * time.Second},
		{name: "long connect timeout extends the write timeout", connect: 60 * time.Second, want: 65 * time.Second},
		{name: "just above the default", connect: 28 * time.Second, want: 33 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := server.WriteTimeoutFor(tc.connect)
			require.Equal(t, tc.want, got)
			require.Greater(t, got, tc.connect)
		})
	}
}

func TestRun_WriteTimeout(t *testing.T) {
	t.Parallel()

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false}`))
	})

	testCases := []struct {
		name         string
		writeTimeout time.Duration
		wantResponse bool
	}{
		{name: "slow check answered within write timeout", writeTimeout: 2 * time.Second, wantResponse: true},
		{name: "slow check cut off by write timeout", writeTimeout: 50 * time.Millisecond, wantResponse: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			addrCh := make(chan net.Addr, 1)
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Run(ctx, server.RunConfig{
					Address:      "127.0.0.1:0",
					Handler:      slow,
					WriteTimeout: tc.writeTimeout,
					OnListen:     func(addr net.Addr) { addrCh <- addr },
				})
			}()

			addr := <-addrCh
			resp, err := http.Get("http://" + addr.String() + server.RouteDBHealth)
			if tc.wantResponse {
				require.NoError(t, err)
				_ = resp.Body.Close()
				require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
			} else {
				require.Error(t, err)
			}

			cancel()
			require.NoError(t, <-errCh)
		})
	}
}
