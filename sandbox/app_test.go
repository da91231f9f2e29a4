package sandbox_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/alovak/cardvault/sandbox"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestApp(t *testing.T) {
	cfg := sandbox.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"

	app := sandbox.NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.NoError(t, app.Start())
	t.Cleanup(app.Shutdown)

	base := "http://" + app.Addr

	get := func(path string) (int, string) {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, _ := get("/-/live")
	require.Equal(t, http.StatusOK, code)

	code, _ = get("/-/ready")
	require.Equal(t, http.StatusOK, code)

	resp, err := http.Post(base+"/payment_methods", "application/json",
		strings.NewReader(`{"card_number":"4111111111111111","cvv":"123"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	code, body := get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `cardvault_sandbox_http_requests_total{code="201",route="/payment_methods"} 1`)
	require.Contains(t, body, `cardvault_sandbox_payment_method_actions_total{action="create",valid="true"} 1`)
	require.Contains(t, body, "go_goroutines")
}

func TestAppUnsupportedBackend(t *testing.T) {
	cfg := sandbox.DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.RepoBackend = "redis"

	app := sandbox.NewApp(nil, cfg)
	require.Error(t, app.Start())

	cfg.RepoBackend = "pg"
	require.ErrorContains(t, app.Start(), "DB_DSN")
}
