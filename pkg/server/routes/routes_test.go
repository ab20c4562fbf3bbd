package routes

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/pkg/server/handlers"
	"github.com/kubelab/log-aggregator/pkg/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouterLogsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	out := &bytes.Buffer{}
	defaultWriter := gin.DefaultWriter
	gin.DefaultWriter = out
	t.Cleanup(func() { gin.DefaultWriter = defaultWriter })

	l := logger.New(false, io.Discard)
	service := weather.NewService(weather.NewClient("http://127.0.0.1:0", "secret", http.DefaultClient), weather.NewCache(10, time.Minute), l)

	router := NewRouter(handlers.New(service, l, "test"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out.String(), "/healthz")
	assert.Len(t, router.Handlers, 2, "logger and recovery middleware")
}
