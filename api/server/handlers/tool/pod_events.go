package tool

import (
	"errors"
	"net/http"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/pkg/event"
)

const defaultEventsHoursBack = 1

type GetPodEventsHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewGetPodEventsHandler(config *config.Config) *GetPodEventsHandler {
	return &GetPodEventsHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *GetPodEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.GetPodEventsRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	if h.config.Events == nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(
			errors.New("kubernetes is not configured"),
			http.StatusServiceUnavailable,
		), true)
		return
	}

	if req.HoursBack == 0 {
		req.HoursBack = defaultEventsHoursBack
	}

	since := time.Now().UTC().Add(-time.Duration(req.HoursBack) * time.Hour)

	raw, err := h.config.Events.FetchEvents(r.Context(), req.Namespace, req.Pod, since)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	reduced := event.Reduce(raw)

	if reduced == nil {
		reduced = []types.ReducedEvent{}
	}

	h.resultWriter.WriteResult(w, r, &types.GetPodEventsResponse{
		Namespace: req.Namespace,
		Pod:       req.Pod,
		Count:     len(reduced),
		Events:    reduced,
	})
}
