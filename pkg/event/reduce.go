package event

import (
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
)

const messageKeyLength = 100

// Reduce merges events that share a reason and message prefix. Counts are
// summed, the latest last timestamp wins, and every other field comes from the
// first occurrence. Output keeps first-occurrence order.
func Reduce(events []RawEvent) []types.ReducedEvent {
	index := make(map[string]int, len(events))
	res := make([]types.ReducedEvent, 0, len(events))

	for _, e := range events {
		count := e.Count

		if count <= 0 {
			count = 1
		}

		key := reduceKey(e)

		if i, ok := index[key]; ok {
			res[i].Count += count

			if e.LastTimestamp != nil && (res[i].LastTimestamp == nil || e.LastTimestamp.After(*res[i].LastTimestamp)) {
				last := *e.LastTimestamp
				res[i].LastTimestamp = &last
			}

			continue
		}

		index[key] = len(res)

		res = append(res, types.ReducedEvent{
			Type:           e.Type,
			Reason:         e.Reason,
			Message:        e.Message,
			Count:          count,
			FirstTimestamp: copyTime(e.FirstTimestamp),
			LastTimestamp:  copyTime(e.LastTimestamp),
			InvolvedObject: types.InvolvedObject{
				Kind: e.InvolvedObjectKind,
				Name: e.InvolvedObjectName,
			},
		})
	}

	return res
}

func reduceKey(e RawEvent) string {
	msg := []rune(e.Message)

	if len(msg) > messageKeyLength {
		msg = msg[:messageKeyLength]
	}

	return e.Reason + ":" + string(msg)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	c := *t

	return &c
}
