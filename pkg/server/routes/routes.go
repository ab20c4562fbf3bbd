package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kubelab/log-aggregator/pkg/server/handlers"
)

func NewRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/", h.Info)
	router.GET("/healthz", h.Healthz)

	router.GET("/mcp/tools", h.ListTools)
	router.POST("/mcp/tools/:name", h.CallTool)

	return router
}
