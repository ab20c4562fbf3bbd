package weather

import (
	"context"
	"fmt"

	"github.com/kubelab/log-aggregator/internal/logger"
)

// Service serves station data through the cache. Every read takes useCache;
// with useCache false the API is always called and the cache refreshed.
type Service struct {
	Client *Client
	Cache  *Cache
	Logger *logger.Logger
}

func NewService(client *Client, cache *Cache, l *logger.Logger) *Service {
	return &Service{
		Client: client,
		Cache:  cache,
		Logger: l,
	}
}

func (s *Service) Stations(ctx context.Context, useCache bool) (Document, error) {
	return s.cached(stationsKey(), useCache, func() (Document, error) {
		return s.Client.Stations(ctx)
	})
}

// Station returns the metadata and devices of a single station.
func (s *Service) Station(ctx context.Context, stationID int, useCache bool) (Document, error) {
	return s.cached(stationKey(stationID), useCache, func() (Document, error) {
		doc, err := s.Client.Station(ctx, stationID)

		if err != nil {
			return nil, err
		}

		stations, ok := doc["stations"].([]interface{})

		if !ok || len(stations) == 0 {
			return nil, fmt.Errorf("%w: %d", ErrStationNotFound, stationID)
		}

		station, ok := stations[0].(map[string]interface{})

		if !ok {
			return nil, fmt.Errorf("unexpected station document for %d", stationID)
		}

		return Document(station), nil
	})
}

func (s *Service) Observation(ctx context.Context, stationID int, useCache bool) (Document, error) {
	return s.cached(observationKey(stationID), useCache, func() (Document, error) {
		return s.Client.Observation(ctx, stationID)
	})
}

// Forecast returns current conditions and the daily forecast. Hourly entries
// are dropped.
func (s *Service) Forecast(ctx context.Context, stationID int, useCache bool) (Document, error) {
	return s.cached(forecastKey(stationID), useCache, func() (Document, error) {
		doc, err := s.Client.Forecast(ctx, stationID)

		if err != nil {
			return nil, err
		}

		if forecast, ok := doc["forecast"].(map[string]interface{}); ok {
			delete(forecast, "hourly")
		}

		return doc, nil
	})
}

func (s *Service) ClearCache() {
	s.Cache.Clear()
	s.Logger.Info().Caller().Msg("weather cache cleared")
}

func (s *Service) cached(key string, useCache bool, fetch func() (Document, error)) (Document, error) {
	if useCache {
		if doc, ok := s.Cache.Get(key); ok {
			s.Logger.Debug().Caller().Msgf("using cached %s", key)
			return doc, nil
		}
	}

	doc, err := fetch()

	if err != nil {
		return nil, err
	}

	s.Cache.Set(key, doc)

	return doc, nil
}
