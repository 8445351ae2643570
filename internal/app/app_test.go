package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahidhamidi/well-data-refine-62/internal/config"
)

func dialWS(t *testing.T, serverURL string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

// testApplication wires an Application without touching the global logger,
// log files or OpenTelemetry exporters.
func testApplication(t *testing.T) *Application {
	t.Helper()

	app := &Application{
		Config: config.Default(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, app.initializeServices())
	require.NoError(t, app.setupRouter())
	return app
}

func TestRouterServesHealth(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health/live", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestRouterServesDatasetAPI(t *testing.T) {
	app := testApplication(t)

	body := "Depth,WOB,RPM,ROP\n1000,8.5,120,15.2\n1010,9.0,118,14.8\n"
	req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/dataset/quality", nil)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterStripsTrailingSlash(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health/live/", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSecurityHeaders(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterUnknownRoute(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketRouteUpgrades(t *testing.T) {
	app := testApplication(t)
	app.Hub.Start()
	defer app.Hub.Shutdown()

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	conn, resp, err := dialWS(t, srv.URL)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestStopIsGraceful(t *testing.T) {
	app := testApplication(t)
	app.Config.Server.Port = 0
	app.createServer()
	app.Hub.Start()

	require.NoError(t, app.Stop(context.Background()))
}
