package logstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/kubelab/log-aggregator/pkg/logstore"
	"github.com/kubelab/log-aggregator/pkg/logstore/memorystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector(t *testing.T) {
	selector := logstore.Selector(logstore.QueryOptions{
		Labels: map[string]string{
			"namespace": "media",
			"container": "sonarr",
		},
		RegexLabels: map[string]string{
			"pod": "sonarr-abc123.*",
		},
	})

	assert.Equal(t, `{container="sonarr", namespace="media", pod=~"sonarr-abc123.*"}`, selector)
}

func newStore(t *testing.T) *memorystore.MemoryStore {
	t.Helper()

	store, err := memorystore.New("fetch-test", memorystore.Options{Dir: t.TempDir()})
	require.NoError(t, err)

	return store
}

func TestFetchLogsSortsAndFormats(t *testing.T) {
	store := newStore(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	labels := map[string]string{"namespace": "media", "pod": "sonarr-abc123", "container": "sonarr"}

	require.NoError(t, store.Push(labels, "third", base.Add(2*time.Second)))
	require.NoError(t, store.Push(labels, "first", base))
	require.NoError(t, store.Push(labels, "second", base.Add(time.Second)))
	require.NoError(t, store.Push(map[string]string{"namespace": "media", "pod": "radarr-1", "container": "radarr"}, "other pod", base))
	require.NoError(t, store.Push(map[string]string{"namespace": "books", "pod": "sonarr-abc123", "container": "sonarr"}, "other namespace", base))

	out, err := logstore.NewFetcher(store).FetchLogs(context.Background(), logstore.LogQuery{
		Namespace: "media",
		Workload:  "sonarr-abc123",
		Start:     base.Add(-time.Minute),
		End:       base.Add(time.Minute),
		Limit:     100,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"[2024-01-01 12:00:00] [sonarr-abc123/sonarr] first\n"+
			"[2024-01-01 12:00:01] [sonarr-abc123/sonarr] second\n"+
			"[2024-01-01 12:00:02] [sonarr-abc123/sonarr] third",
		out,
	)
}

func TestFetchLogsKeepsNewestWithinLimit(t *testing.T) {
	store := newStore(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	labels := map[string]string{"namespace": "media", "pod": "sonarr-abc123", "container": "sonarr"}

	for i, line := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Push(labels, line, base.Add(time.Duration(i)*time.Second)))
	}

	out, err := logstore.NewFetcher(store).FetchLogs(context.Background(), logstore.LogQuery{
		Namespace: "media",
		Workload:  "sonarr-abc123",
		Container: "sonarr",
		Start:     base.Add(-time.Minute),
		End:       base.Add(time.Minute),
		Limit:     2,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"[2024-01-01 12:00:02] [sonarr-abc123/sonarr] c\n"+
			"[2024-01-01 12:00:03] [sonarr-abc123/sonarr] d",
		out,
	)
}

func TestFetchLogsEmpty(t *testing.T) {
	store := newStore(t)

	out, err := logstore.NewFetcher(store).FetchLogs(context.Background(), logstore.LogQuery{
		Namespace: "media",
		Workload:  "sonarr-abc123",
		Start:     time.Now().Add(-time.Hour),
		End:       time.Now(),
		Limit:     10,
	})

	require.NoError(t, err)
	assert.Equal(t, logstore.NoLogsFound, out)
}

func TestFetchLogsTreatsWorkloadAsLiteralPrefix(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.Push(map[string]string{"namespace": "web", "pod": "api.v2-1"}, "dotted", now))
	require.NoError(t, store.Push(map[string]string{"namespace": "web", "pod": "apixv2-1"}, "not dotted", now))

	out, err := logstore.NewFetcher(store).FetchLogs(context.Background(), logstore.LogQuery{
		Namespace: "web",
		Workload:  "api.v2",
		Start:     now.Add(-time.Minute),
		End:       now.Add(time.Minute),
		Limit:     10,
	})

	require.NoError(t, err)
	assert.Contains(t, out, "dotted")
	assert.NotContains(t, out, "not dotted")
	assert.Contains(t, out, "[api.v2-1/unknown]")
}
