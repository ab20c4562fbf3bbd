// Package servertest builds API server configs backed by a temporary sqlite
// database, a file log store and in-memory metrics and event sources.
package servertest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/envconf"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/testutil"
	"github.com/kubelab/log-aggregator/pkg/event"
	"github.com/kubelab/log-aggregator/pkg/logstore/memorystore"
)

type Metrics struct {
	Out      *types.PodMetrics
	Err      error
	ReadyErr error
}

func (m *Metrics) FetchPodMetrics(ctx context.Context, namespace, workload string, start, end time.Time) (*types.PodMetrics, error) {
	return m.Out, m.Err
}

func (m *Metrics) Ready(ctx context.Context) error {
	return m.ReadyErr
}

type Events struct {
	Out      []event.RawEvent
	Err      error
	ReadyErr error
}

func (e *Events) FetchEvents(ctx context.Context, namespace, workload string, since time.Time) ([]event.RawEvent, error) {
	return e.Out, e.Err
}

func (e *Events) Ready(ctx context.Context) error {
	return e.ReadyErr
}

type Env struct {
	Config  *config.Config
	Store   *memorystore.MemoryStore
	Metrics *Metrics
	Events  *Events
}

// EnvConf returns the decoded defaults of the aggregator's environment.
func EnvConf() *envconf.EnvDecoderConf {
	return &envconf.EnvDecoderConf{
		Version: "test",
		CollectorConf: envconf.CollectorConf{
			LogWindowMinutes:          30,
			MaxLogLines:               1000,
			PreviousLogLines:          30,
			PreviousLogsLookbackHours: 6,
			DedupWindowHours:          1,
			QueryTimeout:              5 * time.Second,
		},
		RetentionConf: envconf.RetentionConf{
			RetentionDays:        7,
			SweepIntervalMinutes: 60,
		},
	}
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	store, err := memorystore.New("servertest", memorystore.Options{Dir: t.TempDir()})

	if err != nil {
		t.Fatalf("could not create memory store: %v", err)
	}

	env := &Env{
		Store:   store,
		Metrics: &Metrics{},
		Events:  &Events{},
	}

	env.Config, err = config.GetConfig(
		EnvConf(),
		logger.New(false, io.Discard),
		testutil.NewRepository(t),
		store,
		env.Metrics,
		env.Events,
	)

	if err != nil {
		t.Fatalf("could not build server config: %v", err)
	}

	return env
}
