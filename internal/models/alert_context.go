package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kubelab/log-aggregator/api/server/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AlertContext is the persisted diagnostic bundle for a single alert.
type AlertContext struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// AlertName is the composite "namespace/alertname" label
	AlertName string  `gorm:"column:alert_name;size:512;not null;index"`
	Alertname string  `gorm:"column:alertname;size:255;not null;index;index:idx_alert_contexts_dedup,priority:1"`
	Namespace string  `gorm:"size:255;not null;index;index:idx_alert_contexts_dedup,priority:2"`
	Workload  *string `gorm:"size:255;index;index:idx_alert_contexts_dedup,priority:3"`
	Container *string `gorm:"size:255"`

	Severity    types.Severity    `gorm:"size:50;not null;index"`
	Status      types.AlertStatus `gorm:"size:50;not null"`
	Fingerprint string            `gorm:"size:255;index"`

	FiredAt    time.Time `gorm:"not null;index"`
	ResolvedAt *time.Time

	Logs         *string `gorm:"type:text"`
	PreviousLogs *string `gorm:"type:text"`
	Events       EventList
	Metrics      MetricsDocument

	Labels      datatypes.JSONType[map[string]string] `gorm:"not null"`
	Annotations datatypes.JSONType[map[string]string] `gorm:"not null"`

	CreatedAt time.Time `gorm:"index:idx_alert_contexts_dedup,priority:4"`
	UpdatedAt time.Time
}

func (a *AlertContext) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return nil
}

func (a *AlertContext) ToAPIType() *types.AlertContext {
	res := &types.AlertContext{
		ID:           a.ID.String(),
		AlertName:    a.AlertName,
		Alertname:    a.Alertname,
		Namespace:    a.Namespace,
		Workload:     a.Workload,
		Container:    a.Container,
		Severity:     a.Severity,
		Status:       a.Status,
		Fingerprint:  a.Fingerprint,
		FiredAt:      a.FiredAt,
		ResolvedAt:   a.ResolvedAt,
		Logs:         a.Logs,
		PreviousLogs: a.PreviousLogs,
		Labels:       a.Labels.Data(),
		Annotations:  a.Annotations.Data(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}

	if len(a.Events) > 0 {
		res.Events = a.Events
	}

	if !a.Metrics.Data.IsEmpty() {
		res.Metrics = a.Metrics.Data
	}

	if res.Labels == nil {
		res.Labels = map[string]string{}
	}

	if res.Annotations == nil {
		res.Annotations = map[string]string{}
	}

	return res
}

// EventList is stored as a nullable JSON column. An empty list is written as NULL.
type EventList []types.ReducedEvent

func (e EventList) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}

	b, err := json.Marshal([]types.ReducedEvent(e))

	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (e *EventList) Scan(value interface{}) error {
	b, err := jsonBytes(value)

	if err != nil || b == nil {
		*e = nil
		return err
	}

	return json.Unmarshal(b, (*[]types.ReducedEvent)(e))
}

func (EventList) GormDataType() string {
	return "json"
}

func (EventList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDBDataType(db)
}

// MetricsDocument is stored as a nullable JSON column. Metrics without any
// series are written as NULL.
type MetricsDocument struct {
	Data *types.PodMetrics
}

func (m MetricsDocument) Value() (driver.Value, error) {
	if m.Data.IsEmpty() {
		return nil, nil
	}

	b, err := json.Marshal(m.Data)

	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (m *MetricsDocument) Scan(value interface{}) error {
	b, err := jsonBytes(value)

	if err != nil || b == nil {
		m.Data = nil
		return err
	}

	m.Data = &types.PodMetrics{}

	return json.Unmarshal(b, m.Data)
}

func (MetricsDocument) GormDataType() string {
	return "json"
}

func (MetricsDocument) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDBDataType(db)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}

		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}

		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column value of type %T", value)
	}
}

func jsonDBDataType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}

	return "JSON"
}
