package promstore

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

const (
	cpuQuery    = `rate(container_cpu_usage_seconds_total{namespace=%q,pod=~%q}[5m])`
	memoryQuery = `container_memory_working_set_bytes{namespace=%q,pod=~%q}`

	defaultStep = time.Minute
)

type Config struct {
	Address    string
	HTTPClient *http.Client
	Step       time.Duration
}

// Client reads per-container CPU and memory series from Prometheus.
type Client struct {
	client api.Client
	api    v1.API
	step   time.Duration
}

func New(conf Config) (*Client, error) {
	if conf.Address == "" {
		return nil, fmt.Errorf("prometheus address is required")
	}

	apiConf := api.Config{Address: conf.Address}

	if conf.HTTPClient != nil {
		apiConf.Client = conf.HTTPClient
	}

	client, err := api.NewClient(apiConf)

	if err != nil {
		return nil, fmt.Errorf("error creating prometheus client: %w", err)
	}

	step := conf.Step

	if step <= 0 {
		step = defaultStep
	}

	return &Client{
		client: client,
		api:    v1.NewAPI(client),
		step:   step,
	}, nil
}

// FetchPodMetrics returns the CPU usage rate (cores) and memory working set
// (bytes) series for every container of the pods matching workload.
func (c *Client) FetchPodMetrics(ctx context.Context, namespace, workload string, start, end time.Time) (*types.PodMetrics, error) {
	podRegex := regexp.QuoteMeta(workload) + ".*"
	r := v1.Range{Start: start, End: end, Step: c.step}

	cpu, err := c.queryRange(ctx, fmt.Sprintf(cpuQuery, namespace, podRegex), r)

	if err != nil {
		return nil, fmt.Errorf("error querying cpu usage: %w", err)
	}

	memory, err := c.queryRange(ctx, fmt.Sprintf(memoryQuery, namespace, podRegex), r)

	if err != nil {
		return nil, fmt.Errorf("error querying memory usage: %w", err)
	}

	return &types.PodMetrics{
		CPU:    cpu,
		Memory: memory,
	}, nil
}

func (c *Client) queryRange(ctx context.Context, query string, r v1.Range) ([]types.ContainerSeries, error) {
	value, _, err := c.api.QueryRange(ctx, query, r)

	if err != nil {
		return nil, err
	}

	matrix, ok := value.(model.Matrix)

	if !ok {
		return nil, fmt.Errorf("unexpected result type %s", value.Type())
	}

	return matrixToSeries(matrix), nil
}

func matrixToSeries(matrix model.Matrix) []types.ContainerSeries {
	res := make([]types.ContainerSeries, 0, len(matrix))

	for _, stream := range matrix {
		container := string(stream.Metric["container"])

		if container == "" {
			container = "unknown"
		}

		values := make([]types.MetricSample, 0, len(stream.Values))

		for _, sample := range stream.Values {
			values = append(values, types.MetricSample{
				Timestamp: sample.Timestamp.Time().UTC(),
				Value:     float64(sample.Value),
			})
		}

		res = append(res, types.ContainerSeries{
			Container: container,
			Values:    values,
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Container < res[j].Container
	})

	return res
}

// Ready checks the prometheus readiness endpoint.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.client.URL("/-/ready", nil).String(), nil)

	if err != nil {
		return err
	}

	resp, body, err := c.client.Do(ctx, req)

	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("prometheus is not ready: status %d: %s", resp.StatusCode, body)
	}

	return nil
}
