package collector

import (
	"time"

	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/internal/repository"
)

// Deduplicator finds a bundle already stored for the same alert inside a
// trailing window.
type Deduplicator struct {
	Window time.Duration

	now func() time.Time
}

func NewDeduplicator(window time.Duration) *Deduplicator {
	return &Deduplicator{
		Window: window,
		now:    time.Now,
	}
}

// Check returns the most recently created bundle with the same alertname,
// namespace and workload created within the window, or nil. It never performs
// any I/O besides the lookup.
func (d *Deduplicator) Check(repo *repository.AlertContextRepository, rec AlertRecord) (*models.AlertContext, error) {
	since := d.now().Add(-d.Window)

	return repo.FindRecentDuplicate(rec.Alertname, rec.Namespace, rec.workloadPtr(), since)
}
