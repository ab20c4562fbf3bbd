package tool

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
	"gorm.io/gorm"
)

const defaultAlertsHoursBack = 24

type ListAlertsHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewListAlertsHandler(config *config.Config) *ListAlertsHandler {
	return &ListAlertsHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *ListAlertsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.ListAlertsRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	if req.HoursBack == 0 {
		req.HoursBack = defaultAlertsHoursBack
	}

	res, err := h.config.Reporter.RecentByNamespace(req.HoursBack)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, res)
}

type GetAlertHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewGetAlertHandler(config *config.Config) *GetAlertHandler {
	return &GetAlertHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *GetAlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.GetAlertRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	id, err := uuid.Parse(req.ID)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(
			fmt.Errorf("invalid alert id: %s", req.ID),
			http.StatusBadRequest,
		), true)
		return
	}

	ac, err := h.config.Repository.AlertContext.ReadAlertContext(id)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrNotFound(fmt.Errorf("alert %s not found", id)), true)
			return
		}

		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, ac.ToAPIType())
}

type GetClusterHealthHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewGetClusterHealthHandler(config *config.Config) *GetClusterHealthHandler {
	return &GetClusterHealthHandler{
		resultWriter: shared.NewDefaultResultWriter(),
		config:       config,
	}
}

func (h *GetClusterHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.config.Reporter.ClusterHealth()

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, res)
}
