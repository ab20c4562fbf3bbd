package handlers

import (
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/pkg/weather"
)

const (
	GetStations    = "get_stations"
	GetStation     = "get_station"
	GetObservation = "get_observation"
	GetForecast    = "get_forecast"
	ClearCache     = "clear_cache"
)

// Handlers serves the weather tools over gin.
type Handlers struct {
	Service *weather.Service
	Logger  *logger.Logger
	Name    string
	Version string
}

func New(service *weather.Service, l *logger.Logger, version string) *Handlers {
	return &Handlers{
		Service: service,
		Logger:  l,
		Name:    "Tempest Weather",
		Version: version,
	}
}
