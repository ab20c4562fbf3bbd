package tool

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
)

const (
	ListAlerts       = "list_alerts"
	GetAlert         = "get_alert"
	GetPodLogs       = "get_pod_logs"
	GetPodEvents     = "get_pod_events"
	GetPodMetrics    = "get_pod_metrics"
	GetClusterHealth = "get_cluster_health"
)

func property(kind, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        kind,
		"description": description,
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	res := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		res["required"] = required
	}

	return res
}

// Definitions lists every tool served under /mcp/tools.
var Definitions = []types.Tool{
	{
		Name:        ListAlerts,
		Description: "List recent alerts grouped by namespace as lightweight summaries. Use get_alert for the collected context.",
		InputSchema: objectSchema(map[string]interface{}{
			"hours_back": property("integer", "How many hours back to look (default 24)"),
		}),
	},
	{
		Name:        GetAlert,
		Description: "Get one stored alert context with its logs, events and metrics.",
		InputSchema: objectSchema(map[string]interface{}{
			"id": property("string", "Alert context id"),
		}, "id"),
	},
	{
		Name:        GetPodLogs,
		Description: "Fetch recent logs for a pod from the log store.",
		InputSchema: objectSchema(map[string]interface{}{
			"namespace":    property("string", "Kubernetes namespace"),
			"pod":          property("string", "Pod name or name prefix"),
			"container":    property("string", "Container name"),
			"minutes_back": property("integer", "How many minutes back to look (default 5)"),
			"max_lines":    property("integer", "Maximum number of lines (default 100)"),
		}, "namespace", "pod"),
	},
	{
		Name:        GetPodEvents,
		Description: "Fetch recent warning and lifecycle events for a namespace or pod.",
		InputSchema: objectSchema(map[string]interface{}{
			"namespace":  property("string", "Kubernetes namespace"),
			"pod":        property("string", "Pod name or name prefix"),
			"hours_back": property("integer", "How many hours back to look (default 1)"),
		}, "namespace"),
	},
	{
		Name:        GetPodMetrics,
		Description: "Get the current CPU and memory usage of a pod's containers.",
		InputSchema: objectSchema(map[string]interface{}{
			"namespace": property("string", "Kubernetes namespace"),
			"pod":       property("string", "Pod name or name prefix"),
		}, "namespace", "pod"),
	},
	{
		Name:        GetClusterHealth,
		Description: "Rate overall cluster health from the alerts of the last 24 hours.",
		InputSchema: objectSchema(map[string]interface{}{}),
	},
}

type ListToolsHandler struct {
	resultWriter shared.ResultWriter
}

func NewListToolsHandler(config *config.Config) *ListToolsHandler {
	return &ListToolsHandler{
		resultWriter: shared.NewDefaultResultWriter(),
	}
}

func (h *ListToolsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.resultWriter.WriteResult(w, r, &types.ListToolsResponse{Tools: Definitions})
}

// CallToolHandler routes POST /mcp/tools/{name} to the named tool.
type CallToolHandler struct {
	config *config.Config
	tools  map[string]http.Handler
}

func NewCallToolHandler(config *config.Config) *CallToolHandler {
	return &CallToolHandler{
		config: config,
		tools: map[string]http.Handler{
			ListAlerts:       NewListAlertsHandler(config),
			GetAlert:         NewGetAlertHandler(config),
			GetPodLogs:       NewGetPodLogsHandler(config),
			GetPodEvents:     NewGetPodEventsHandler(config),
			GetPodMetrics:    NewGetPodMetricsHandler(config),
			GetClusterHealth: NewGetClusterHealthHandler(config),
		},
	}
}

func (h *CallToolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	handler, ok := h.tools[name]

	if !ok {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrNotFound(fmt.Errorf("unknown tool: %s", name)), true)
		return
	}

	handler.ServeHTTP(w, r)
}
