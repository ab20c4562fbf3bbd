package tool

import (
	"net/http"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/pkg/logstore"
)

const (
	defaultLogsMinutesBack = 5
	defaultLogsMaxLines    = 100

	maxLogChars     = 10000
	truncatedSuffix = "\n... [truncated]"
)

type GetPodLogsHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewGetPodLogsHandler(config *config.Config) *GetPodLogsHandler {
	return &GetPodLogsHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *GetPodLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.GetPodLogsRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	if req.MinutesBack == 0 {
		req.MinutesBack = defaultLogsMinutesBack
	}

	if req.MaxLines == 0 {
		req.MaxLines = defaultLogsMaxLines
	}

	end := time.Now().UTC()

	logs, err := h.config.Logs.FetchLogs(r.Context(), logstore.LogQuery{
		Namespace: req.Namespace,
		Workload:  req.Pod,
		Container: req.Container,
		Start:     end.Add(-time.Duration(req.MinutesBack) * time.Minute),
		End:       end,
		Limit:     req.MaxLines,
	})

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	logs, truncated := truncate(logs, maxLogChars)

	h.resultWriter.WriteResult(w, r, &types.GetPodLogsResponse{
		Namespace: req.Namespace,
		Pod:       req.Pod,
		Container: req.Container,
		Logs:      logs,
		Truncated: truncated,
	})
}

// truncate cuts s to max characters and marks the cut with truncatedSuffix.
func truncate(s string, max int) (string, bool) {
	runes := []rune(s)

	if len(runes) <= max {
		return s, false
	}

	return string(runes[:max]) + truncatedSuffix, true
}
