package types

import "time"

type InvolvedObject struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// ReducedEvent is one Kubernetes event entry after duplicates sharing a
// reason and message prefix have been merged.
type ReducedEvent struct {
	Type           string         `json:"type"`
	Reason         string         `json:"reason"`
	Message        string         `json:"message"`
	Count          int32          `json:"count"`
	FirstTimestamp *time.Time     `json:"first_timestamp"`
	LastTimestamp  *time.Time     `json:"last_timestamp"`
	InvolvedObject InvolvedObject `json:"involved_object"`
}

type MetricSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type ContainerSeries struct {
	Container string         `json:"container"`
	Values    []MetricSample `json:"values"`
}

// PodMetrics holds CPU usage rate (cores) and memory working set (bytes)
// series for every container of a workload.
type PodMetrics struct {
	CPU    []ContainerSeries `json:"cpu"`
	Memory []ContainerSeries `json:"memory"`
}

func (m *PodMetrics) IsEmpty() bool {
	return m == nil || (len(m.CPU) == 0 && len(m.Memory) == 0)
}

type AlertContext struct {
	ID           string            `json:"id"`
	AlertName    string            `json:"alert_name"`
	Alertname    string            `json:"alertname"`
	Namespace    string            `json:"namespace"`
	Workload     *string           `json:"workload"`
	Container    *string           `json:"container"`
	Severity     Severity          `json:"severity"`
	Status       AlertStatus       `json:"status"`
	Fingerprint  string            `json:"fingerprint"`
	FiredAt      time.Time         `json:"fired_at"`
	ResolvedAt   *time.Time        `json:"resolved_at"`
	Logs         *string           `json:"logs"`
	PreviousLogs *string           `json:"previous_logs"`
	Events       []ReducedEvent    `json:"events"`
	Metrics      *PodMetrics       `json:"metrics"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
