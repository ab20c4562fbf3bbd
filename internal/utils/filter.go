package utils

import (
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
)

type ListAlertContextsFilter struct {
	// FiredAfter is inclusive, FiredBefore is exclusive
	FiredAfter  *time.Time
	FiredBefore *time.Time

	Namespace *string
	Severity  *types.Severity
}
