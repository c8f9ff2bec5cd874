package healthcheck_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaurya/recordkit/config"
	"github.com/shaurya/recordkit/framework"
	"github.com/shaurya/recordkit/plugins/healthcheck"
	rktest "github.com/shaurya/recordkit/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *framework.App {
	t.Helper()
	cfg := config.Defaults()
	cfg.App.Env = "test"
	cfg.I18n.LocalesDir = t.TempDir()
	app := framework.New(&cfg)
	app.Register(&healthcheck.Plugin{})
	return app
}

func get(t *testing.T, app *framework.App, path string) (int, map[string]any) {
	t.Helper()
	res := httptest.NewRecorder()
	app.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return res.Code, body
}

func TestReadyWithoutDatabase(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.Boot())

	code, body := get(t, app, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])

	code, body = get(t, app, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "not configured", body["db"])
}

func TestReadyWithDatabase(t *testing.T) {
	app := newApp(t)
	db, _ := rktest.NewMockDB(t)
	require.NoError(t, app.UseDB(db))
	require.NoError(t, app.Boot())

	code, body := get(t, app, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"db": "ok"}, body["checks"])
}
