package healthcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/types"
)

const pingTimeout = 5 * time.Second

// HealthHandler reports the state of the database and of every upstream the
// collector reads from. Only the database decides the overall status.
type HealthHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewHealthHandler(config *config.Config) *HealthHandler {
	return &HealthHandler{
		resultWriter: shared.NewDefaultResultWriter(),
		config:       config,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := &types.HealthResponse{
		Status:     "healthy",
		Version:    h.config.Version,
		Database:   types.DependencyHealthy,
		Loki:       h.ping(r.Context(), "loki", h.config.LogStore),
		Prometheus: h.ping(r.Context(), "prometheus", h.config.Metrics),
		Kubernetes: h.ping(r.Context(), "kubernetes", h.config.Events),
	}

	if err := h.config.Repository.Ping(); err != nil {
		h.config.Logger.Warn().Caller().Msgf("database health check failed: %v", err)

		res.Status = "degraded"
		res.Database = types.DependencyUnhealthy
	}

	h.resultWriter.WriteResult(w, r, res)
}

func (h *HealthHandler) ping(ctx context.Context, name string, p config.Pinger) types.DependencyStatus {
	if p == nil {
		return types.DependencyUnhealthy
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.Ready(ctx); err != nil {
		h.config.Logger.Warn().Caller().Msgf("%s health check failed: %v", name, err)
		return types.DependencyUnhealthy
	}

	return types.DependencyHealthy
}
