package lokistore

import (
	"context"
	"fmt"
)

// Ready reports whether the loki instance answers its readiness endpoint.
func (store *LokiStore) Ready(ctx context.Context) error {
	if _, err := store.client.get(ctx, "/ready", nil); err != nil {
		return fmt.Errorf("loki store with name %s is not ready: %w", store.name, err)
	}

	return nil
}
