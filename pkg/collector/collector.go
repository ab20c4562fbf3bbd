package collector

import (
	"context"
	"strings"
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/pkg/event"
	"github.com/kubelab/log-aggregator/pkg/logstore"
	"github.com/kubelab/log-aggregator/pkg/metrics"
)

type LogSource interface {
	FetchLogs(ctx context.Context, q logstore.LogQuery) (string, error)
}

type MetricsSource interface {
	FetchPodMetrics(ctx context.Context, namespace, workload string, start, end time.Time) (*types.PodMetrics, error)
}

type EventSource interface {
	FetchEvents(ctx context.Context, namespace, workload string, since time.Time) ([]event.RawEvent, error)
}

type Config struct {
	// Window is added on both sides of the firing instant
	Window time.Duration

	MaxLogLines uint32

	PreviousLogLines     uint32
	PreviousLogsLookback time.Duration

	// QueryTimeout bounds every individual source call
	QueryTimeout time.Duration
}

// Collector gathers logs, events and metrics around an alert. Every source
// failure is logged and leaves the matching field empty.
type Collector struct {
	Logs    LogSource
	Metrics MetricsSource
	Events  EventSource

	Config Config
	Logger *logger.Logger

	now func() time.Time
}

func NewCollector(logs LogSource, metricsSource MetricsSource, events EventSource, conf Config, l *logger.Logger) *Collector {
	return &Collector{
		Logs:    logs,
		Metrics: metricsSource,
		Events:  events,
		Config:  conf,
		Logger:  l,
		now:     time.Now,
	}
}

// Collect returns an unpersisted bundle for rec. Logs, previous logs and
// metrics are only fetched when the alert names a workload; events are always
// fetched.
func (c *Collector) Collect(ctx context.Context, rec AlertRecord) *models.AlertContext {
	ac := rec.toModel()

	start := rec.FiredAt.Add(-c.Config.Window)
	end := rec.FiredAt.Add(c.Config.Window)

	if rec.Workload != "" {
		ac.Logs = c.fetchLogs(ctx, rec, "logs", logstore.LogQuery{
			Namespace: rec.Namespace,
			Workload:  rec.Workload,
			Container: rec.Container,
			Start:     start,
			End:       end,
			Limit:     c.Config.MaxLogLines,
		})

		if wantsPreviousLogs(rec.Alertname) {
			now := c.now().UTC()

			ac.PreviousLogs = c.fetchLogs(ctx, rec, "previous_logs", logstore.LogQuery{
				Namespace: rec.Namespace,
				Workload:  rec.Workload,
				Container: rec.Container,
				Start:     now.Add(-c.Config.PreviousLogsLookback),
				End:       now,
				Limit:     c.Config.PreviousLogLines,
			})
		}

		ac.Metrics = models.MetricsDocument{Data: c.fetchMetrics(ctx, rec, start, end)}
	}

	ac.Events = c.fetchEvents(ctx, rec, start)

	return ac
}

func (c *Collector) fetchLogs(ctx context.Context, rec AlertRecord, source string, q logstore.LogQuery) *string {
	if c.Logs == nil {
		return nil
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	logs, err := c.Logs.FetchLogs(callCtx, q)

	if err != nil {
		c.recordFailure(rec, source, err)
		return nil
	}

	return optional(logs)
}

func (c *Collector) fetchMetrics(ctx context.Context, rec AlertRecord, start, end time.Time) *types.PodMetrics {
	if c.Metrics == nil {
		return nil
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	podMetrics, err := c.Metrics.FetchPodMetrics(callCtx, rec.Namespace, rec.Workload, start, end)

	if err != nil {
		c.recordFailure(rec, "metrics", err)
		return nil
	}

	if podMetrics.IsEmpty() {
		return nil
	}

	return podMetrics
}

func (c *Collector) fetchEvents(ctx context.Context, rec AlertRecord, since time.Time) models.EventList {
	if c.Events == nil {
		return nil
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	raw, err := c.Events.FetchEvents(callCtx, rec.Namespace, rec.Workload, since)

	if err != nil {
		c.recordFailure(rec, "events", err)
		return nil
	}

	reduced := event.Reduce(raw)

	if len(reduced) == 0 {
		return nil
	}

	return reduced
}

func (c *Collector) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.Config.QueryTimeout)
}

func (c *Collector) recordFailure(rec AlertRecord, source string, err error) {
	metrics.ContextFetchFailures.WithLabelValues(source).Inc()

	if c.Logger != nil {
		c.Logger.Warn().Caller().Msgf("could not fetch %s for alert %s (workload %q): %v", source, rec.AlertName(), rec.Workload, err)
	}
}

func wantsPreviousLogs(alertname string) bool {
	name := strings.ToLower(alertname)

	return strings.Contains(name, "crash") || strings.Contains(name, "restart")
}
