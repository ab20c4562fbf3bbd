package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.Version,
	})
}

func (h *Handlers) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":            h.Name,
		"version":         h.Version,
		"tools_endpoint":  "/mcp/tools",
		"health_endpoint": "/healthz",
	})
}
