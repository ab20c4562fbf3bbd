package lokistore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kubelab/log-aggregator/pkg/logstore"
)

type LokiHTTPClientConf struct {
	Address string
}

type Client struct {
	client  *http.Client
	address string
}

func NewClient(conf *LokiHTTPClientConf, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		client:  client,
		address: strings.TrimSuffix(conf.Address, "/"),
	}
}

type QueryRangeStreamResponse struct {
	Status string         `json:"status"`
	Data   QueryRangeData `json:"data"`
}

type QueryRangeData struct {
	ResultType string                 `json:"resultType"`
	Result     []QueryRangeStreamItem `json:"result"`
}

type QueryRangeStreamItem struct {
	Stream QueryRangeStreamMeta   `json:"stream"`
	Values QueryRangeStreamValues `json:"values"`
}

// QueryRangeStreamMeta is the label set of a single stream.
type QueryRangeStreamMeta map[string]string

// QueryRangeStreamValues holds [nanosecond timestamp, line] pairs.
type QueryRangeStreamValues [][]string

func (c *Client) QueryRange(ctx context.Context, options logstore.QueryOptions) (*QueryRangeStreamResponse, error) {
	params := make(map[string][]string)
	params["query"] = []string{
		logstore.Selector(options),
	}

	params["limit"] = []string{
		fmt.Sprintf("%d", options.Limit),
	}

	params["start"] = []string{
		fmt.Sprintf("%d", options.Start.UnixNano()),
	}

	params["end"] = []string{
		fmt.Sprintf("%d", options.End.UnixNano()),
	}

	direction := options.Direction

	if direction == "" {
		direction = logstore.DirectionBackward
	}

	params["direction"] = []string{string(direction)}

	resBytes, err := c.get(ctx, "/loki/api/v1/query_range", params)

	if err != nil {
		return nil, err
	}

	resp := &QueryRangeStreamResponse{}

	if err := json.Unmarshal(resBytes, resp); err != nil {
		return nil, fmt.Errorf("error decoding loki response: %w", err)
	}

	if resp.Status != "success" {
		return nil, fmt.Errorf("loki query returned status %q", resp.Status)
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string) ([]byte, error) {
	urlVals := url.Values(params)
	encodedURLVals := urlVals.Encode()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		fmt.Sprintf("%s%s?%s", c.address, path, encodedURLVals),
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
		return nil, fmt.Errorf("loki returned status code %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
