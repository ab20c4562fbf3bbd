// Package weather reads station data from the WeatherFlow Tempest REST API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrMissingToken    = errors.New("WEATHERFLOW_API_TOKEN not configured, get a token from https://tempestwx.com/settings/tokens")
	ErrStationNotFound = errors.New("station not found")
)

// Document is a decoded JSON object as returned by the API.
type Document map[string]interface{}

type Client struct {
	client  *http.Client
	address string
	token   string
}

func NewClient(address, token string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		client:  client,
		address: strings.TrimSuffix(address, "/"),
		token:   token,
	}
}

func (c *Client) Stations(ctx context.Context) (Document, error) {
	return c.get(ctx, "/stations", nil)
}

func (c *Client) Station(ctx context.Context, stationID int) (Document, error) {
	return c.get(ctx, fmt.Sprintf("/stations/%d", stationID), nil)
}

func (c *Client) Observation(ctx context.Context, stationID int) (Document, error) {
	return c.get(ctx, fmt.Sprintf("/observations/station/%d", stationID), nil)
}

func (c *Client) Forecast(ctx context.Context, stationID int) (Document, error) {
	return c.get(ctx, "/better_forecast", map[string][]string{
		"station_id": {strconv.Itoa(stationID)},
	})
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string) (Document, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	urlVals := url.Values(params)

	if urlVals == nil {
		urlVals = url.Values{}
	}

	urlVals.Set("token", c.token)

	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		fmt.Sprintf("%s%s?%s", c.address, path, urlVals.Encode()),
		nil,
	)

	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("weatherflow returned status code %d for %s: %s", res.StatusCode, path, strings.TrimSpace(string(body)))
	}

	doc := Document{}

	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("error decoding weatherflow response for %s: %w", path, err)
	}

	return doc, nil
}
