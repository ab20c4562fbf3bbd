package healthcheck

import (
	"net/http"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
)

type ReadyzHandler struct {
	config *config.Config
}

func NewReadyzHandler(config *config.Config) *ReadyzHandler {
	return &ReadyzHandler{
		config: config,
	}
}

func (h *ReadyzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.config.Repository.Ping(); err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	writeHealthy(w)
}

func writeHealthy(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("."))
}
