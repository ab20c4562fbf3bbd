package alert

import (
	"net/http"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
)

type CleanupHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewCleanupHandler(config *config.Config) *CleanupHandler {
	return &CleanupHandler{
		resultWriter: shared.NewDefaultResultWriter(),
		config:       config,
	}
}

func (h *CleanupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.config.Sweeper.PurgeExpired()

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, &types.CleanupResponse{
		Deleted:       deleted,
		RetentionDays: h.config.Sweeper.RetentionDays,
	})
}
