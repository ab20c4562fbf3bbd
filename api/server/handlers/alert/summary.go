package alert

import (
	"net/http"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/pkg/summary"
)

type DailySummaryHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewDailySummaryHandler(config *config.Config) *DailySummaryHandler {
	return &DailySummaryHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *DailySummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.DailySummaryRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	date, err := summary.ParseDate(req.Date, time.Now())

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(err, http.StatusBadRequest), true)
		return
	}

	res, err := h.config.Reporter.DailySummary(date)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, res)
}
