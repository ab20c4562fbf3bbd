package tool

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/internal/testutil/servertest"
	"github.com/kubelab/log-aggregator/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newRouter(env *servertest.Env) http.Handler {
	r := chi.NewRouter()

	r.Method(http.MethodGet, "/mcp/tools", NewListToolsHandler(env.Config))
	r.Method(http.MethodPost, "/mcp/tools/{name}", NewCallToolHandler(env.Config))

	return r
}

func call(t *testing.T, h http.Handler, name string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/mcp/tools/"+name, bytes.NewReader(b))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	return rec
}

func TestListTools(t *testing.T) {
	env := servertest.NewEnv(t)

	rec := httptest.NewRecorder()
	newRouter(env).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/tools", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.ListToolsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	names := make([]string, 0, len(res.Tools))

	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"])
	}

	assert.ElementsMatch(t, []string{ListAlerts, GetAlert, GetPodLogs, GetPodEvents, GetPodMetrics, GetClusterHealth}, names)
}

func TestUnknownTool(t *testing.T) {
	env := servertest.NewEnv(t)

	rec := call(t, newRouter(env), "delete_everything", map[string]string{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAlert(t *testing.T) {
	env := servertest.NewEnv(t)
	h := newRouter(env)

	workload := "sonarr-abc123"

	ac, err := env.Config.Repository.AlertContext.CreateAlertContext(&models.AlertContext{
		AlertName:   "media/PodCrashLooping",
		Alertname:   "PodCrashLooping",
		Namespace:   "media",
		Workload:    &workload,
		Severity:    types.SeverityCritical,
		Status:      types.AlertStatusFiring,
		FiredAt:     time.Now().UTC(),
		Labels:      datatypes.NewJSONType(map[string]string{"pod": workload}),
		Annotations: datatypes.NewJSONType(map[string]string{}),
	})
	require.NoError(t, err)

	rec := call(t, h, GetAlert, map[string]string{"id": ac.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.AlertContext{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))
	assert.Equal(t, ac.ID.String(), res.ID)
	assert.Equal(t, "media/PodCrashLooping", res.AlertName)

	rec = call(t, h, GetAlert, map[string]string{"id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, GetAlert, map[string]string{"id": uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h, GetAlert, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAlertsDefaultsToOneDay(t *testing.T) {
	env := servertest.NewEnv(t)

	for _, ns := range []string{"media", "books", "media"} {
		_, err := env.Config.Repository.AlertContext.CreateAlertContext(&models.AlertContext{
			AlertName:   ns + "/HighMemory",
			Alertname:   "HighMemory",
			Namespace:   ns,
			Severity:    types.SeverityWarning,
			Status:      types.AlertStatusFiring,
			FiredAt:     time.Now().UTC(),
			Labels:      datatypes.NewJSONType(map[string]string{}),
			Annotations: datatypes.NewJSONType(map[string]string{}),
		})
		require.NoError(t, err)
	}

	rec := call(t, newRouter(env), ListAlerts, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.ListAlertsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	assert.Equal(t, uint(24), res.PeriodHours)
	assert.Equal(t, 3, res.TotalAlerts)
	require.Len(t, res.AlertsByNamespace, 2)
	assert.Len(t, res.AlertsByNamespace["books"], 1)
	assert.Len(t, res.AlertsByNamespace["media"], 2)
	assert.Equal(t, "HighMemory", res.AlertsByNamespace["media"][0].Alertname)
}

func TestGetPodLogsTruncates(t *testing.T) {
	env := servertest.NewEnv(t)
	labels := map[string]string{"namespace": "media", "pod": "sonarr-abc123", "container": "sonarr"}

	require.NoError(t, env.Store.Push(labels, strings.Repeat("x", 12000), time.Now().Add(-time.Minute)))

	rec := call(t, newRouter(env), GetPodLogs, map[string]string{"namespace": "media", "pod": "sonarr"})
	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.GetPodLogsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	assert.True(t, res.Truncated)
	assert.True(t, strings.HasSuffix(res.Logs, truncatedSuffix))
	assert.Equal(t, maxLogChars+len(truncatedSuffix), len(res.Logs))
}

func TestGetPodLogsRequiresPod(t *testing.T) {
	env := servertest.NewEnv(t)

	rec := call(t, newRouter(env), GetPodLogs, map[string]string{"namespace": "media"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTruncate(t *testing.T) {
	out, truncated := truncate("short", 10)
	assert.False(t, truncated)
	assert.Equal(t, "short", out)

	out, truncated = truncate("ééééé", 3)
	assert.True(t, truncated)
	assert.Equal(t, "ééé"+truncatedSuffix, out)
}

func TestGetPodEventsReduces(t *testing.T) {
	env := servertest.NewEnv(t)
	last := time.Now().UTC().Add(-10 * time.Minute)

	env.Events.Out = []event.RawEvent{
		{Type: "Warning", Reason: "BackOff", Message: "Back-off restarting failed container", Count: 2, LastTimestamp: &last},
		{Type: "Warning", Reason: "BackOff", Message: "Back-off restarting failed container", Count: 3, LastTimestamp: &last},
	}

	rec := call(t, newRouter(env), GetPodEvents, map[string]string{"namespace": "media", "pod": "sonarr"})
	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.GetPodEventsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	require.Equal(t, 1, res.Count)
	assert.Equal(t, int32(5), res.Events[0].Count)
}

func TestGetPodMetricsReportsLatestSample(t *testing.T) {
	env := servertest.NewEnv(t)
	t0 := time.Now().UTC().Add(-2 * time.Minute)
	t1 := t0.Add(time.Minute)

	env.Metrics.Out = &types.PodMetrics{
		CPU: []types.ContainerSeries{
			{Container: "sonarr", Values: []types.MetricSample{{Timestamp: t1, Value: 0.123456}, {Timestamp: t0, Value: 0.5}}},
		},
		Memory: []types.ContainerSeries{
			{Container: "sonarr", Values: []types.MetricSample{{Timestamp: t0, Value: 1}, {Timestamp: t1, Value: 134217728}}},
			{Container: "exporter", Values: []types.MetricSample{{Timestamp: t1, Value: 1572864}}},
		},
	}

	rec := call(t, newRouter(env), GetPodMetrics, map[string]string{"namespace": "media", "pod": "sonarr-abc123"})
	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.GetPodMetricsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	require.Len(t, res.Containers, 2)

	assert.Equal(t, "exporter", res.Containers[0].Container)
	assert.Nil(t, res.Containers[0].CPUCores)
	require.NotNil(t, res.Containers[0].MemoryMiB)
	assert.Equal(t, 1.5, *res.Containers[0].MemoryMiB)

	assert.Equal(t, "sonarr", res.Containers[1].Container)
	require.NotNil(t, res.Containers[1].CPUCores)
	assert.Equal(t, 0.1235, *res.Containers[1].CPUCores)
	require.NotNil(t, res.Containers[1].MemoryMiB)
	assert.Equal(t, 128.0, *res.Containers[1].MemoryMiB)
}

func TestGetClusterHealthWithoutAlerts(t *testing.T) {
	env := servertest.NewEnv(t)

	rec := call(t, newRouter(env), GetClusterHealth, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	res := &types.ClusterHealthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, 0, res.TotalAlerts)
}
