// Package memorystore keeps logs in a local file for running without Loki.
//
// The file is <dir>/<name>.log and holds one JSON document per line:
//
//	{"ts":"2024-01-01T12:00:00Z","labels":{"namespace":"media","pod":"sonarr-abc123","container":"sonarr"},"line":"boom"}
//
// ts is RFC 3339 in UTC. Queries match the namespace, pod and container
// labels the same way a Loki stream selector would. Blank or malformed lines
// are skipped. Lines are appended with Push, or from the command line with
// log-aggregator-cli push.
package memorystore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/kubelab/log-aggregator/pkg/logstore"
)

// MemoryStore is a file-backed log store for running without loki. Lines are
// kept as JSON documents, one per line.
type MemoryStore struct {
	name     string
	location string

	mu sync.Mutex
}

type Options struct {
	Dir string // Store the log file at this location. Defaults to /var/tmp
}

type record struct {
	Timestamp time.Time         `json:"ts"`
	Labels    map[string]string `json:"labels"`
	Line      string            `json:"line"`
}

func (store *MemoryStore) createLogFile() error {
	logFilePath := store.location

	logFileDir := filepath.Dir(logFilePath)

	err := os.MkdirAll(logFileDir, os.ModePerm)

	if err != nil {
		return fmt.Errorf("error creating log directory for memory store with name %s. Error: %w", store.name, err)
	}

	f, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE, 0666)

	if err != nil {
		return fmt.Errorf("error creating log file for memory store with name %s. Error: %w", store.name, err)
	}

	defer f.Close()

	return nil
}

func New(name string, options Options) (*MemoryStore, error) {
	store := new(MemoryStore)
	store.name = name

	logFileDir := options.Dir

	if logFileDir == "" {
		logFileDir = filepath.Join("/var", "tmp")
	}

	store.location = path.Join(logFileDir, name+".log")

	err := store.createLogFile()

	if err != nil {
		return nil, err
	}

	return store, nil
}

func (store *MemoryStore) Query(ctx context.Context, options logstore.QueryOptions, w logstore.Writer) error {
	matchers, err := compileMatchers(options.RegexLabels)

	if err != nil {
		return fmt.Errorf("error querying memory store with name %s. Error: %w", store.name, err)
	}

	store.mu.Lock()
	f, err := os.Open(store.location)

	if err != nil {
		store.mu.Unlock()
		return fmt.Errorf("error querying memory store with name %s. Error: %w", store.name, err)
	}

	var matches []record

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			f.Close()
			store.mu.Unlock()
			return err
		}

		if len(scanner.Bytes()) == 0 {
			continue
		}

		var rec record

		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}

		if matchesRecord(rec, options, matchers) {
			matches = append(matches, rec)
		}
	}

	scanErr := scanner.Err()
	f.Close()
	store.mu.Unlock()

	if scanErr != nil {
		return fmt.Errorf("error querying memory store with name %s. Error: %w", store.name, scanErr)
	}

	// mirror loki: the limit applies from the end the query direction starts at
	sort.SliceStable(matches, func(i, j int) bool {
		if options.Direction == logstore.DirectionForward {
			return matches[i].Timestamp.Before(matches[j].Timestamp)
		}

		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	if options.Limit > 0 && len(matches) > int(options.Limit) {
		matches = matches[:options.Limit]
	}

	for i := range matches {
		ts := matches[i].Timestamp

		if err := w.Write(&ts, matches[i].Labels, matches[i].Line); err != nil {
			return err
		}
	}

	return nil
}

func (store *MemoryStore) Push(labels map[string]string, line string, t time.Time) error {
	b, err := json.Marshal(record{Timestamp: t.UTC(), Labels: labels, Line: line})

	if err != nil {
		return fmt.Errorf("error encoding log for memory store with name %s. Error: %w", store.name, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	f, err := os.OpenFile(store.location, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)

	if err != nil {
		return fmt.Errorf("error opening log file for memory store with name %s. Error: %w", store.name, err)
	}

	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error pushing log to memory store with name %s. Error: %w", store.name, err)
	}

	return nil
}

func (store *MemoryStore) Ready(ctx context.Context) error {
	if _, err := os.Stat(store.location); err != nil {
		return fmt.Errorf("memory store with name %s is not ready: %w", store.name, err)
	}

	return nil
}

func compileMatchers(regexLabels map[string]string) (map[string]*regexp.Regexp, error) {
	matchers := make(map[string]*regexp.Regexp, len(regexLabels))

	for label, expr := range regexLabels {
		// LogQL regex matchers are fully anchored
		re, err := regexp.Compile("^(?:" + expr + ")$")

		if err != nil {
			return nil, fmt.Errorf("invalid regex for label %s: %w", label, err)
		}

		matchers[label] = re
	}

	return matchers, nil
}

func matchesRecord(rec record, options logstore.QueryOptions, matchers map[string]*regexp.Regexp) bool {
	if !options.Start.IsZero() && rec.Timestamp.Before(options.Start) {
		return false
	}

	// end is exclusive, as in loki
	if !options.End.IsZero() && !rec.Timestamp.Before(options.End) {
		return false
	}

	for label, val := range options.Labels {
		if rec.Labels[label] != val {
			return false
		}
	}

	for label, re := range matchers {
		if !re.MatchString(rec.Labels[label]) {
			return false
		}
	}

	return true
}
