package collector

import (
	"fmt"
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/models"
	"gorm.io/datatypes"
)

const (
	defaultNamespace = "unknown"
	defaultAlertname = "unknown"
	defaultSeverity  = types.SeverityWarning
)

// AlertRecord is a webhook alert with defaults applied.
type AlertRecord struct {
	Alertname   string
	Namespace   string
	Workload    string
	Container   string
	Severity    types.Severity
	Status      types.AlertStatus
	Fingerprint string

	FiredAt    time.Time
	ResolvedAt *time.Time

	Labels      map[string]string
	Annotations map[string]string
}

// NewAlertRecord normalizes a webhook alert. Missing identity labels are
// replaced by defaults instead of rejecting the alert, and resolved_at is only
// set for resolved alerts, falling back to now when the sender omitted endsAt.
func NewAlertRecord(alert types.WebhookAlert, now time.Time) AlertRecord {
	labels := make(map[string]string, len(alert.Labels))

	for k, v := range alert.Labels {
		labels[k] = v
	}

	annotations := make(map[string]string, len(alert.Annotations))

	for k, v := range alert.Annotations {
		annotations[k] = v
	}

	rec := AlertRecord{
		Alertname:   labelOr(labels, "alertname", defaultAlertname),
		Namespace:   labelOr(labels, "namespace", defaultNamespace),
		Workload:    labels["pod"],
		Container:   labels["container"],
		Severity:    types.Severity(labelOr(labels, "severity", string(defaultSeverity))),
		Status:      alert.Status,
		Fingerprint: alert.Fingerprint,
		FiredAt:     alert.StartsAt.UTC(),
		Labels:      labels,
		Annotations: annotations,
	}

	if rec.Status == "" {
		rec.Status = types.AlertStatusFiring
	}

	if rec.Fingerprint == "" {
		rec.Fingerprint = fmt.Sprintf("%s:%s:%s:%s", rec.Alertname, rec.Namespace, rec.Workload, rec.Container)
	}

	if rec.Status == types.AlertStatusResolved {
		resolvedAt := now.UTC()

		if alert.EndsAt != nil && !alert.EndsAt.IsZero() {
			resolvedAt = alert.EndsAt.UTC()
		}

		rec.ResolvedAt = &resolvedAt
	}

	return rec
}

// AlertName is the composite "namespace/alertname" label.
func (r AlertRecord) AlertName() string {
	return r.Namespace + "/" + r.Alertname
}

func (r AlertRecord) workloadPtr() *string {
	return optional(r.Workload)
}

// toModel returns an unpersisted bundle with no collected context.
func (r AlertRecord) toModel() *models.AlertContext {
	return &models.AlertContext{
		AlertName:   r.AlertName(),
		Alertname:   r.Alertname,
		Namespace:   r.Namespace,
		Workload:    r.workloadPtr(),
		Container:   optional(r.Container),
		Severity:    r.Severity,
		Status:      r.Status,
		Fingerprint: r.Fingerprint,
		FiredAt:     r.FiredAt,
		ResolvedAt:  r.ResolvedAt,
		Labels:      datatypes.NewJSONType(r.Labels),
		Annotations: datatypes.NewJSONType(r.Annotations),
	}
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v := labels[key]; v != "" {
		return v
	}

	return fallback
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
