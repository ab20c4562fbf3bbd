package logstore

import (
	"fmt"
	"sort"
	"strings"
)

// Selector renders the LogQL stream selector for the given options, e.g.
// {container="sonarr", namespace="media", pod=~"sonarr-abc123.*"}.
func Selector(options QueryOptions) string {
	lstrs := make([]string, 0, len(options.Labels)+len(options.RegexLabels))

	for l, v := range options.Labels {
		lstrs = append(lstrs, fmt.Sprintf("%s=%q", l, v))
	}

	for l, v := range options.RegexLabels {
		lstrs = append(lstrs, fmt.Sprintf("%s=~%q", l, v))
	}

	sort.Strings(lstrs)
	return fmt.Sprintf("{%s}", strings.Join(lstrs, ", "))
}
