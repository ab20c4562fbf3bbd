package adapter

import (
	"fmt"
	"net/http"

	"github.com/kubelab/log-aggregator/internal/envconf"
	"github.com/kubelab/log-aggregator/pkg/logstore"
	"github.com/kubelab/log-aggregator/pkg/logstore/lokistore"
	"github.com/kubelab/log-aggregator/pkg/logstore/memorystore"
)

const logStoreName = "log-aggregator"

// NewLogStore returns the log store selected by LOG_STORE_KIND: "memory" for a
// local file store, anything else for Loki.
func NewLogStore(conf *envconf.LogStoreConf, client *http.Client) (logstore.LogStore, error) {
	if conf.LogStoreKind == "memory" {
		return NewMemoryStore(conf)
	}

	store, err := lokistore.New(logStoreName, lokistore.LogStoreConfig{
		Address:    conf.LokiURL,
		HTTPClient: client,
	})

	if err != nil {
		return nil, fmt.Errorf("loki-based log store setup failed: %w", err)
	}

	return store, nil
}

// NewMemoryStore opens the file store under LOG_STORE_DIR that the service
// reads when LOG_STORE_KIND is "memory".
func NewMemoryStore(conf *envconf.LogStoreConf) (*memorystore.MemoryStore, error) {
	store, err := memorystore.New(logStoreName, memorystore.Options{Dir: conf.LogStoreDir})

	if err != nil {
		return nil, fmt.Errorf("memory-based log store setup failed: %w", err)
	}

	return store, nil
}
