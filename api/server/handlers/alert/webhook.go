package alert

import (
	"net/http"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
)

type WebhookHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewWebhookHandler(config *config.Config) *WebhookHandler {
	return &WebhookHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.AlertmanagerWebhook{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	h.config.Logger.Info().Caller().Msgf("received webhook from receiver %q with %d alerts", req.Receiver, len(req.Alerts))

	contexts, err := h.config.Processor.ProcessWebhook(r.Context(), req)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	res := make([]*types.AlertContext, 0, len(contexts))

	for _, ac := range contexts {
		res = append(res, ac.ToAPIType())
	}

	h.resultWriter.WriteResult(w, r, res)
}
