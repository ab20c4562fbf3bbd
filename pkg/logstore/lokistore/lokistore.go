package lokistore

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kubelab/log-aggregator/pkg/logstore"
)

type LokiStore struct {
	name   string
	client *Client
}

type LogStoreConfig struct {
	Address    string
	HTTPClient *http.Client
}

func New(name string, config LogStoreConfig) (*LokiStore, error) {
	address := config.Address

	if address == "" {
		return nil, fmt.Errorf("error initializing loki client with name %s: address is required", name)
	}

	return &LokiStore{
		name:   name,
		client: NewClient(&LokiHTTPClientConf{Address: address}, config.HTTPClient),
	}, nil
}

func (store *LokiStore) Query(ctx context.Context, options logstore.QueryOptions, w logstore.Writer) error {
	resp, err := store.client.QueryRange(ctx, options)

	if err != nil {
		return fmt.Errorf("error querying loki store with name %s. Error: %w", store.name, err)
	}

	for _, stream := range resp.Data.Result {
		for _, value := range stream.Values {
			if len(value) < 2 {
				continue
			}

			var timestamp *time.Time

			if ns, err := strconv.ParseInt(value[0], 10, 64); err == nil {
				t := time.Unix(0, ns).UTC()
				timestamp = &t
			}

			if err := w.Write(timestamp, stream.Stream, value[1]); err != nil {
				return err
			}
		}
	}

	return nil
}
