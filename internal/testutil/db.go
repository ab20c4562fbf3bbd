// Package testutil provides shared helpers for tests that need a real database.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/kubelab/log-aggregator/internal/adapter"
	"github.com/kubelab/log-aggregator/internal/envconf"
	"github.com/kubelab/log-aggregator/internal/repository"
)

// NewRepository returns a repository backed by a migrated sqlite file in a
// temporary directory that is removed when the test finishes.
func NewRepository(t *testing.T) *repository.Repository {
	t.Helper()

	db, err := adapter.New(&envconf.DBConf{
		SQLLite:     true,
		SQLLitePath: filepath.Join(t.TempDir(), "alerts.db"),
	})

	if err != nil {
		t.Fatalf("could not open sqlite database: %v", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		t.Fatalf("could not migrate sqlite database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return repository.NewRepository(db)
}
