package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/tasks/:date", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, date := range []string{"2025-03-01", "2025-03-02"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+date, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/tasks/:date", "204")))
}

func TestObserveStoreAndRemote(t *testing.T) {
	m := New()
	m.ObserveStore("get", "notes", nil)
	m.ObserveStore("update", "notes", errors.New("disk full"))
	m.ObserveRemote(http.MethodPost, "/tasks", "ok")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.storeOperations.WithLabelValues("update", "notes", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.remoteRequests.WithLabelValues(http.MethodPost, "/tasks", "ok")))

	expected := `
# HELP dayplanner_document_store_operations_total Document repository operations by kind and outcome
# TYPE dayplanner_document_store_operations_total counter
dayplanner_document_store_operations_total{kind="notes",operation="get",outcome="ok"} 1
dayplanner_document_store_operations_total{kind="notes",operation="update",outcome="error"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "dayplanner_document_store_operations_total"))
}

func TestRemoteOutcomes(t *testing.T) {
	m := New()
	assert.Empty(t, m.RemoteOutcomes())

	m.ObserveRemote(http.MethodGet, "/health", "ok")
	m.ObserveRemote(http.MethodGet, "/tasks", "ok")
	m.ObserveRemote(http.MethodPost, "/tasks", "error")
	m.ObserveRemote(http.MethodPost, "/tasks", "error")
	m.ObserveStore("get", "tasks", nil)

	assert.Equal(t, map[string]int{"ok": 2, "error": 2}, m.RemoteOutcomes())
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStore("get", "tasks", nil)
		m.ObserveRemote(http.MethodGet, "/health", "ok")
	})
	assert.Empty(t, m.RemoteOutcomes())
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveRemote(http.MethodGet, "/health", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dayplanner_remote_requests_total")
}
