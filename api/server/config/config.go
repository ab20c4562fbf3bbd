package config

import (
	"context"

	"github.com/kubelab/log-aggregator/internal/envconf"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/repository"
	"github.com/kubelab/log-aggregator/pkg/collector"
	"github.com/kubelab/log-aggregator/pkg/logstore"
	"github.com/kubelab/log-aggregator/pkg/retention"
	"github.com/kubelab/log-aggregator/pkg/summary"
)

// Pinger is implemented by every upstream the health endpoint reports on.
type Pinger interface {
	Ready(ctx context.Context) error
}

type MetricsSource interface {
	collector.MetricsSource
	Pinger
}

type EventSource interface {
	collector.EventSource
	Pinger
}

type Config struct {
	// Logger for logging
	Logger *logger.Logger

	Version string

	Repository *repository.Repository

	Processor *collector.Processor
	Reporter  *summary.Reporter
	Sweeper   *retention.Sweeper

	LogStore logstore.LogStore
	Logs     collector.LogSource
	Metrics  MetricsSource
	Events   EventSource
}

func GetConfig(
	envConf *envconf.EnvDecoderConf,
	l *logger.Logger,
	repo *repository.Repository,
	ls logstore.LogStore,
	metricsSource MetricsSource,
	events EventSource,
) (*Config, error) {
	logs := logstore.NewFetcher(ls)

	c := collector.NewCollector(logs, metricsSource, events, collector.Config{
		Window:               envConf.CollectorConf.LogWindow(),
		MaxLogLines:          envConf.CollectorConf.MaxLogLines,
		PreviousLogLines:     envConf.CollectorConf.PreviousLogLines,
		PreviousLogsLookback: envConf.CollectorConf.PreviousLogsLookback(),
		QueryTimeout:         envConf.CollectorConf.QueryTimeout,
	}, l)

	res := &Config{
		Logger:     l,
		Version:    envConf.Version,
		Repository: repo,
		Processor:  collector.NewProcessor(repo, c, collector.NewDeduplicator(envConf.CollectorConf.DedupWindow()), l),
		Reporter:   summary.NewReporter(repo),
		Sweeper:    retention.NewSweeper(repo, envConf.RetentionConf.RetentionDays, l),
		LogStore:   ls,
		Logs:       logs,
		Metrics:    metricsSource,
		Events:     events,
	}

	return res, nil
}
