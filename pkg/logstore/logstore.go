package logstore

import (
	"context"
	"time"
)

type Direction string

const (
	DirectionBackward Direction = "backward"
	DirectionForward  Direction = "forward"
)

// Writer receives log lines as they are read from a LogStore.
type Writer interface {
	Write(timestamp *time.Time, labels map[string]string, line string) error
}

type QueryOptions struct {
	// Labels are matched exactly, RegexLabels are matched as regular expressions
	Labels      map[string]string
	RegexLabels map[string]string

	Start     time.Time
	End       time.Time
	Limit     uint32
	Direction Direction
}

type LogStore interface {
	Query(ctx context.Context, options QueryOptions, writer Writer) error
	Ready(ctx context.Context) error
}
