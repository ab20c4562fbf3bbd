package types

type DailySummaryRequest struct {
	Date string `schema:"date"`
}

type DailySummaryResponse struct {
	Date        string          `json:"date"`
	TotalAlerts int             `json:"total_alerts"`
	BySeverity  map[string]int  `json:"alerts_by_severity"`
	ByNamespace map[string]int  `json:"alerts_by_namespace"`
	Alerts      []*AlertContext `json:"alerts"`
}

type MarkDayCompleteResponse struct {
	Status  string `json:"status"`
	Date    string `json:"date"`
	Deleted int64  `json:"deleted"`
}

type CleanupResponse struct {
	Deleted       int64 `json:"deleted"`
	RetentionDays uint  `json:"retention_days"`
}

type DependencyStatus string

const (
	DependencyHealthy   DependencyStatus = "healthy"
	DependencyUnhealthy DependencyStatus = "unhealthy"
)

type HealthResponse struct {
	Status     string           `json:"status"`
	Version    string           `json:"version"`
	Database   DependencyStatus `json:"database"`
	Loki       DependencyStatus `json:"loki"`
	Prometheus DependencyStatus `json:"prometheus"`
	Kubernetes DependencyStatus `json:"kubernetes"`
}
