package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/pkg/server/handlers"
	"github.com/kubelab/log-aggregator/pkg/server/routes"
	"github.com/kubelab/log-aggregator/pkg/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, token string) (*gin.Engine, *atomic.Int32) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	calls := &atomic.Int32{}

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		switch r.URL.Path {
		case "/stations/42":
			w.Write([]byte(`{"stations":[{"station_id":42,"name":"Backyard"}]}`))
		case "/better_forecast":
			w.Write([]byte(`{"forecast":{"daily":[],"hourly":[]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(api.Close)

	l := logger.New(false, io.Discard)
	service := weather.NewService(weather.NewClient(api.URL, token, api.Client()), weather.NewCache(10, time.Minute), l)

	return routes.NewRouter(handlers.New(service, l, "test")), calls
}

func call(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHealthz(t *testing.T) {
	r, _ := newRouter(t, "secret")

	rec := call(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "healthy", res["status"])
}

func TestListTools(t *testing.T) {
	r, _ := newRouter(t, "secret")

	rec := call(r, http.MethodGet, "/mcp/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := struct {
		Tools []handlers.Tool `json:"tools"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Tools, 5)
}

func TestGetStation(t *testing.T) {
	r, calls := newRouter(t, "secret")

	rec := call(r, http.MethodPost, "/mcp/tools/get_station", `{"station_id":42}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Backyard", res["name"])

	rec = call(r, http.MethodPost, "/mcp/tools/get_station", `{"station_id":42}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), calls.Load())

	rec = call(r, http.MethodPost, "/mcp/tools/get_station", `{"station_id":42,"use_cache":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStationIDMustBePositive(t *testing.T) {
	r, calls := newRouter(t, "secret")

	for _, body := range []string{`{"station_id":0}`, `{"station_id":-3}`, ``, `not json`} {
		rec := call(r, http.MethodPost, "/mcp/tools/get_observation", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	assert.Equal(t, int32(0), calls.Load())
}

func TestMissingToken(t *testing.T) {
	r, _ := newRouter(t, "")

	rec := call(r, http.MethodPost, "/mcp/tools/get_stations", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpstreamErrorAndUnknownTool(t *testing.T) {
	r, _ := newRouter(t, "secret")

	rec := call(r, http.MethodPost, "/mcp/tools/get_observation", `{"station_id":42}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = call(r, http.MethodPost, "/mcp/tools/get_rain", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCache(t *testing.T) {
	r, calls := newRouter(t, "secret")

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/mcp/tools/get_forecast", `{"station_id":42}`).Code)

	rec := call(r, http.MethodPost, "/mcp/tools/clear_cache", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/mcp/tools/get_forecast", `{"station_id":42}`).Code)
	assert.Equal(t, int32(2), calls.Load())
}
