package types

import "time"

// Tool describes one callable tool for agent-style clients.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type ListToolsResponse struct {
	Tools []Tool `json:"tools"`
}

type ListAlertsRequest struct {
	HoursBack uint `json:"hours_back"`
}

// AlertSummary is the list entry for one stored alert. Callers fetch the
// collected logs, events and metrics with get_alert.
type AlertSummary struct {
	ID        string      `json:"id"`
	Alertname string      `json:"alertname"`
	Severity  Severity    `json:"severity"`
	Pod       *string     `json:"pod"`
	Container *string     `json:"container"`
	FiredAt   time.Time   `json:"fired_at"`
	Status    AlertStatus `json:"status"`
	Summary   string      `json:"summary"`
}

type ListAlertsResponse struct {
	Summary           string                    `json:"summary"`
	TotalAlerts       int                       `json:"total_alerts"`
	PeriodHours       uint                      `json:"period_hours"`
	AlertsByNamespace map[string][]AlertSummary `json:"alerts_by_namespace"`
}

type GetAlertRequest struct {
	ID string `json:"id" form:"required"`
}

type GetPodLogsRequest struct {
	Namespace   string `json:"namespace" form:"required"`
	Pod         string `json:"pod" form:"required"`
	Container   string `json:"container"`
	MinutesBack uint   `json:"minutes_back"`
	MaxLines    uint32 `json:"max_lines"`
}

type GetPodLogsResponse struct {
	Namespace string `json:"namespace"`
	Pod       string `json:"pod"`
	Container string `json:"container,omitempty"`
	Logs      string `json:"logs"`
	Truncated bool   `json:"truncated"`
}

type GetPodEventsRequest struct {
	Namespace string `json:"namespace" form:"required"`
	Pod       string `json:"pod"`
	HoursBack uint   `json:"hours_back"`
}

type GetPodEventsResponse struct {
	Namespace string         `json:"namespace"`
	Pod       string         `json:"pod,omitempty"`
	Count     int            `json:"count"`
	Events    []ReducedEvent `json:"events"`
}

type GetPodMetricsRequest struct {
	Namespace string `json:"namespace" form:"required"`
	Pod       string `json:"pod" form:"required"`
}

type ContainerUsage struct {
	Container string   `json:"container"`
	CPUCores  *float64 `json:"cpu_cores,omitempty"`
	MemoryMiB *float64 `json:"memory_mib,omitempty"`
}

type GetPodMetricsResponse struct {
	Namespace  string           `json:"namespace"`
	Pod        string           `json:"pod"`
	Containers []ContainerUsage `json:"containers"`
}

type AlertCount struct {
	Alertname string `json:"alertname"`
	Count     int    `json:"count"`
}

type ClusterHealthResponse struct {
	Status      string         `json:"status"`
	Period      string         `json:"period"`
	TotalAlerts int            `json:"total_alerts"`
	BySeverity  map[string]int `json:"by_severity"`
	ByNamespace map[string]int `json:"by_namespace"`
	TopAlerts   []AlertCount   `json:"top_alerts"`
}
