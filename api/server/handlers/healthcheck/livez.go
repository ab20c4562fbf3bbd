package healthcheck

import (
	"net/http"

	"github.com/kubelab/log-aggregator/api/server/config"
)

type LivezHandler struct {
	config *config.Config
}

func NewLivezHandler(config *config.Config) *LivezHandler {
	return &LivezHandler{
		config: config,
	}
}

func (h *LivezHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeHealthy(w)
}
