package event

import (
	"strings"
	"time"

	v1 "k8s.io/api/core/v1"
)

// RawEvent is a Kubernetes event that passed the relevance filter.
type RawEvent struct {
	Type    string
	Reason  string
	Message string

	// Count is the number of occurrences reported by the cluster, 0 when unset
	Count int32

	FirstTimestamp *time.Time
	LastTimestamp  *time.Time

	InvolvedObjectKind string
	InvolvedObjectName string
}

var failureReasons = map[string]bool{
	"Failed":             true,
	"FailedScheduling":   true,
	"Unhealthy":          true,
	"BackOff":            true,
	"Evicted":            true,
	"OOMKilling":         true,
	"FailedMount":        true,
	"FailedAttachVolume": true,
}

var lifecycleReasons = map[string]bool{
	"Killing":   true,
	"Pulled":    true,
	"Created":   true,
	"Started":   true,
	"Scheduled": true,
}

// IsRelevant reports whether an event is a warning or carries one of the
// tracked failure or lifecycle reasons.
func IsRelevant(e *v1.Event) bool {
	return e.Type == v1.EventTypeWarning || failureReasons[e.Reason] || lifecycleReasons[e.Reason]
}

// Filter keeps the relevant events for a workload (by involved object name
// prefix, all objects when workload is empty) that were last observed at or
// after since. Events without any timestamp are kept.
func Filter(items []v1.Event, workload string, since time.Time) []RawEvent {
	res := make([]RawEvent, 0)

	for i := range items {
		e := &items[i]

		if !IsRelevant(e) {
			continue
		}

		if workload != "" && !strings.HasPrefix(e.InvolvedObject.Name, workload) {
			continue
		}

		last := lastObserved(e)

		if last != nil && last.Before(since) {
			continue
		}

		res = append(res, RawEvent{
			Type:               e.Type,
			Reason:             e.Reason,
			Message:            e.Message,
			Count:              e.Count,
			FirstTimestamp:     timePtr(e.FirstTimestamp.Time),
			LastTimestamp:      last,
			InvolvedObjectKind: e.InvolvedObject.Kind,
			InvolvedObjectName: e.InvolvedObject.Name,
		})
	}

	return res
}

func lastObserved(e *v1.Event) *time.Time {
	if !e.LastTimestamp.IsZero() {
		return timePtr(e.LastTimestamp.Time)
	}

	if !e.EventTime.IsZero() {
		return timePtr(e.EventTime.Time)
	}

	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	t = t.UTC()

	return &t
}
