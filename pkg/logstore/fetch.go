package logstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// NoLogsFound is returned by FetchLogs when the store has no matching lines.
const NoLogsFound = "No logs found"

type LogQuery struct {
	Namespace string
	Workload  string
	Container string
	Start     time.Time
	End       time.Time
	Limit     uint32
}

// Fetcher turns raw LogStore results into a single human-readable text block.
type Fetcher struct {
	Store LogStore
}

func NewFetcher(store LogStore) *Fetcher {
	return &Fetcher{Store: store}
}

// FetchLogs reads up to q.Limit of the newest lines for a workload and returns them
// formatted as "[YYYY-MM-DD HH:MM:SS] [pod/container] line", oldest first.
func (f *Fetcher) FetchLogs(ctx context.Context, q LogQuery) (string, error) {
	options := QueryOptions{
		Labels: map[string]string{
			"namespace": q.Namespace,
		},
		RegexLabels: map[string]string{},
		Start:       q.Start,
		End:         q.End,
		Limit:       q.Limit,
		Direction:   DirectionBackward,
	}

	if q.Workload != "" {
		options.RegexLabels["pod"] = regexp.QuoteMeta(q.Workload) + ".*"
	}

	if q.Container != "" {
		options.Labels["container"] = q.Container
	}

	w := &collectingWriter{}

	if err := f.Store.Query(ctx, options, w); err != nil {
		return "", err
	}

	if len(w.entries) == 0 {
		return NoLogsFound, nil
	}

	sort.SliceStable(w.entries, func(i, j int) bool {
		if !w.entries[i].timestamp.Equal(w.entries[j].timestamp) {
			return w.entries[i].timestamp.Before(w.entries[j].timestamp)
		}

		return w.entries[i].text < w.entries[j].text
	})

	lines := make([]string, 0, len(w.entries))

	for _, e := range w.entries {
		lines = append(lines, e.text)
	}

	return strings.Join(lines, "\n"), nil
}

type entry struct {
	timestamp time.Time
	text      string
}

type collectingWriter struct {
	entries []entry
}

func (w *collectingWriter) Write(timestamp *time.Time, labels map[string]string, line string) error {
	var ts time.Time

	if timestamp != nil {
		ts = timestamp.UTC()
	}

	pod := labels["pod"]

	if pod == "" {
		pod = "unknown"
	}

	container := labels["container"]

	if container == "" {
		container = "unknown"
	}

	w.entries = append(w.entries, entry{
		timestamp: ts,
		text:      fmt.Sprintf("[%s] [%s/%s] %s", ts.Format("2006-01-02 15:04:05"), pod, container, line),
	})

	return nil
}
