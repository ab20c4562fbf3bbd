package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/kubelab/log-aggregator/pkg/weather"
)

type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type stationsRequest struct {
	UseCache *bool `json:"use_cache"`
}

type stationRequest struct {
	StationID int   `json:"station_id" binding:"required,gt=0"`
	UseCache  *bool `json:"use_cache"`
}

func (r stationsRequest) useCache() bool {
	return r.UseCache == nil || *r.UseCache
}

func (r stationRequest) useCache() bool {
	return r.UseCache == nil || *r.UseCache
}

var useCacheProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Whether to use cached data (default: true)",
	"default":     true,
}

func stationSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"station_id": map[string]interface{}{
				"type":             "integer",
				"description":      description,
				"exclusiveMinimum": 0,
			},
			"use_cache": useCacheProperty,
		},
		"required": []string{"station_id"},
	}
}

var Tools = []Tool{
	{
		Name:        GetStations,
		Description: "List every weather station accessible with the configured token.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"use_cache": useCacheProperty,
			},
		},
	},
	{
		Name:        GetStation,
		Description: "Get metadata, devices and settings of one station.",
		InputSchema: stationSchema("The station ID to get information for"),
	},
	{
		Name:        GetObservation,
		Description: "Get the most recent observation of a station.",
		InputSchema: stationSchema("The station ID to get observations for"),
	},
	{
		Name:        GetForecast,
		Description: "Get current conditions and the daily forecast of a station.",
		InputSchema: stationSchema("The station ID to get forecast for"),
	},
	{
		Name:        ClearCache,
		Description: "Clear the weather data cache.",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
	},
}

func (h *Handlers) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tools": Tools,
	})
}

func (h *Handlers) CallTool(c *gin.Context) {
	name := c.Param("name")

	switch name {
	case GetStations:
		req := stationsRequest{}

		if !h.bind(c, &req) {
			return
		}

		h.respond(c, name, func(ctx context.Context) (weather.Document, error) {
			return h.Service.Stations(ctx, req.useCache())
		})
	case GetStation, GetObservation, GetForecast:
		req := stationRequest{}

		if !h.bind(c, &req) {
			return
		}

		h.respond(c, name, func(ctx context.Context) (weather.Document, error) {
			switch name {
			case GetStation:
				return h.Service.Station(ctx, req.StationID, req.useCache())
			case GetObservation:
				return h.Service.Observation(ctx, req.StationID, req.useCache())
			default:
				return h.Service.Forecast(ctx, req.StationID, req.useCache())
			}
		})
	case ClearCache:
		h.Service.ClearCache()

		c.JSON(http.StatusOK, gin.H{
			"message": "Cache cleared successfully",
		})
	default:
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown tool: " + name,
		})
	}
}

// bind decodes an optional JSON body. It writes a 400 and returns false when
// the body is malformed or fails validation.
func (h *Handlers) bind(c *gin.Context, v interface{}) bool {
	err := c.ShouldBindJSON(v)

	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(v)
	}

	if err != nil {
		h.Logger.Warn().Caller().Msgf("invalid request for tool %s: %v", c.Param("name"), err)

		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})

		return false
	}

	return true
}

func (h *Handlers) respond(c *gin.Context, name string, call func(ctx context.Context) (weather.Document, error)) {
	doc, err := call(c.Request.Context())

	if err != nil {
		h.Logger.Error().Caller().Msgf("tool %s failed: %v", name, err)

		status := http.StatusBadGateway

		switch {
		case errors.Is(err, weather.ErrMissingToken):
			status = http.StatusServiceUnavailable
		case errors.Is(err, weather.ErrStationNotFound):
			status = http.StatusNotFound
		}

		c.JSON(status, gin.H{
			"error": err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, doc)
}
