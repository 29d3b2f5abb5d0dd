package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/subscription"
)

type testApp struct {
	handler  http.Handler
	mock     sqlmock.Sqlmock
	registry *prometheus.Registry
}

// newTestApp wires the real service and repository on top of sqlmock.
func newTestApp(t *testing.T, mutate ...func(*Dependencies)) *testApp {
	t.Helper()
	return newTestAppWithServer(t, config.ServerConfig{Host: "127.0.0.1", Port: 0}, mutate...)
}

func newTestAppWithServer(t *testing.T, cfg config.ServerConfig, mutate ...func(*Dependencies)) *testApp {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	deps := Dependencies{
		DB:            db,
		Subscriptions: subscription.NewService(postgres.NewSubscriptionRepo(db)),
		Metrics:       rec,
		Gatherer:      reg,
	}
	for _, m := range mutate {
		m(&deps)
	}

	srv := NewServer(cfg, deps)
	return &testApp{handler: srv.Handler(), mock: mock, registry: reg}
}

func (a *testApp) postForm(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// postFormFrom posts as the given transport peer with the given headers.
func (a *testApp) postFormFrom(remoteAddr string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}
