package summary

import (
	"fmt"
	"sort"
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/internal/repository"
	"github.com/kubelab/log-aggregator/internal/utils"
	"github.com/kubelab/log-aggregator/pkg/retention"
)

const (
	HealthCritical = "critical"
	HealthWarning  = "warning"
	HealthDegraded = "degraded"
	HealthHealthy  = "healthy"

	// more warnings than this in the health period escalate degraded to warning
	warningThreshold = 5
	topAlertsLimit   = 10
	healthPeriod     = 24 * time.Hour

	unknownNamespace = "unknown"
)

// Reporter builds read-side views over stored alert contexts.
type Reporter struct {
	Repository *repository.Repository

	now func() time.Time
}

func NewReporter(repo *repository.Repository) *Reporter {
	return &Reporter{
		Repository: repo,
		now:        time.Now,
	}
}

// ParseDate parses a calendar date as YYYY-MM-DD or RFC 3339 and returns the
// UTC day it falls on. An empty string selects the current UTC day.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return retention.StartOfDay(now), nil
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)

	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}

	return retention.StartOfDay(t), nil
}

// DailySummary reports the alerts that fired on the UTC day of date, newest first.
func (r *Reporter) DailySummary(date time.Time) (*types.DailySummaryResponse, error) {
	start := retention.StartOfDay(date)
	end := start.Add(24 * time.Hour)

	contexts, err := r.Repository.AlertContext.ListAlertContexts(
		&utils.ListAlertContextsFilter{
			FiredAfter:  &start,
			FiredBefore: &end,
		},
		utils.WithSortBy("fired_at"),
		utils.WithOrder(utils.OrderDesc),
	)

	if err != nil {
		return nil, err
	}

	res := &types.DailySummaryResponse{
		Date:        start.Format("2006-01-02"),
		TotalAlerts: len(contexts),
		BySeverity:  countBySeverity(contexts),
		ByNamespace: countByNamespace(contexts),
		Alerts:      toAPITypes(contexts),
	}

	return res, nil
}

// RecentByNamespace groups the alerts that fired in the last hoursBack hours
// by namespace, newest first within each namespace.
func (r *Reporter) RecentByNamespace(hoursBack uint) (*types.ListAlertsResponse, error) {
	since := r.now().UTC().Add(-time.Duration(hoursBack) * time.Hour)

	contexts, err := r.Repository.AlertContext.ListAlertContexts(
		&utils.ListAlertContextsFilter{
			FiredAfter: &since,
		},
		utils.WithSortBy("fired_at"),
		utils.WithOrder(utils.OrderDesc),
	)

	if err != nil {
		return nil, err
	}

	res := &types.ListAlertsResponse{
		TotalAlerts:       len(contexts),
		PeriodHours:       hoursBack,
		AlertsByNamespace: make(map[string][]types.AlertSummary),
	}

	for _, ac := range contexts {
		ns := ac.Namespace

		if ns == "" {
			ns = unknownNamespace
		}

		res.AlertsByNamespace[ns] = append(res.AlertsByNamespace[ns], toSummary(ac))
	}

	res.Summary = fmt.Sprintf("Found %d alerts in the last %d hours across %d namespaces", res.TotalAlerts, hoursBack, len(res.AlertsByNamespace))

	return res, nil
}

func toSummary(ac *models.AlertContext) types.AlertSummary {
	return types.AlertSummary{
		ID:        ac.ID.String(),
		Alertname: ac.Alertname,
		Severity:  ac.Severity,
		Pod:       ac.Workload,
		Container: ac.Container,
		FiredAt:   ac.FiredAt,
		Status:    ac.Status,
		Summary:   ac.Annotations.Data()["summary"],
	}
}

// ClusterHealth rates the cluster from the alerts that fired in the last 24 hours.
func (r *Reporter) ClusterHealth() (*types.ClusterHealthResponse, error) {
	since := r.now().UTC().Add(-healthPeriod)

	contexts, err := r.Repository.AlertContext.ListAlertContexts(
		&utils.ListAlertContextsFilter{
			FiredAfter: &since,
		},
	)

	if err != nil {
		return nil, err
	}

	bySeverity := countBySeverity(contexts)

	res := &types.ClusterHealthResponse{
		Status:      healthStatus(bySeverity),
		Period:      "24h",
		TotalAlerts: len(contexts),
		BySeverity:  bySeverity,
		ByNamespace: countByNamespace(contexts),
		TopAlerts:   topAlerts(contexts, topAlertsLimit),
	}

	return res, nil
}

func healthStatus(bySeverity map[string]int) string {
	warnings := bySeverity[string(types.SeverityWarning)]

	switch {
	case bySeverity[string(types.SeverityCritical)] > 0:
		return HealthCritical
	case warnings > warningThreshold:
		return HealthWarning
	case warnings > 0:
		return HealthDegraded
	default:
		return HealthHealthy
	}
}

func topAlerts(contexts []*models.AlertContext, limit int) []types.AlertCount {
	counts := make(map[string]int)

	for _, ac := range contexts {
		counts[ac.Alertname]++
	}

	res := make([]types.AlertCount, 0, len(counts))

	for name, count := range counts {
		res = append(res, types.AlertCount{Alertname: name, Count: count})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}

		return res[i].Alertname < res[j].Alertname
	})

	if len(res) > limit {
		res = res[:limit]
	}

	return res
}

func countBySeverity(contexts []*models.AlertContext) map[string]int {
	res := make(map[string]int)

	for _, ac := range contexts {
		res[string(ac.Severity)]++
	}

	return res
}

func countByNamespace(contexts []*models.AlertContext) map[string]int {
	res := make(map[string]int)

	for _, ac := range contexts {
		res[ac.Namespace]++
	}

	return res
}

func toAPITypes(contexts []*models.AlertContext) []*types.AlertContext {
	res := make([]*types.AlertContext, 0, len(contexts))

	for _, ac := range contexts {
		res = append(res, ac.ToAPIType())
	}

	return res
}
