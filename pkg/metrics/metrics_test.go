package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(r *Registry) *echo.Echo {
	e := echo.New()
	e.Use(r.Middleware())
	r.Register(e)
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound) })
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMiddleware_CountsRequestsAndErrors(t *testing.T) {
	r := New()
	e := newEcho(r)

	serve(e, http.MethodGet, "/ok")
	serve(e, http.MethodGet, "/ok")
	rec := serve(e, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s := r.Snapshot()
	assert.Equal(t, int64(3), s.TotalRequests)
	assert.Equal(t, int64(1), s.TotalErrors)
	assert.Equal(t, int64(0), s.ActiveRequests)
	assert.Equal(t, int64(2), s.EndpointCounts["GET /ok"])
	assert.Equal(t, int64(1), s.StatusCodes[http.StatusNotFound])
	assert.Equal(t, []string{"GET /missing", "GET /ok"}, s.Endpoints())
}

func TestRegistry_GaugesAndReset(t *testing.T) {
	r := New()
	live := 3
	r.Gauge("sessions", func() int { return live })
	e := newEcho(r)

	serve(e, http.MethodGet, "/ok")

	rec := serve(e, http.MethodGet, "/metrics/requests")
	require.Equal(t, http.StatusOK, rec.Code)

	var s Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, int64(1), s.TotalRequests)
	assert.Equal(t, 3, s.Gauges["sessions"])

	serve(e, http.MethodPost, "/metrics/reset")
	live = 0

	after := r.Snapshot()
	assert.Equal(t, int64(1), after.TotalRequests, "only the reset request itself is counted")
	assert.Equal(t, 0, after.Gauges["sessions"])
}
