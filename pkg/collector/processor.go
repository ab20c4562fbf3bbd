package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/internal/repository"
	"github.com/kubelab/log-aggregator/pkg/metrics"
)

// Processor handles a webhook delivery: each alert is deduplicated and, when
// new, collected and stored. Alerts are handled one after another inside a
// single transaction.
type Processor struct {
	Repository   *repository.Repository
	Collector    *Collector
	Deduplicator *Deduplicator
	Logger       *logger.Logger

	now func() time.Time
}

func NewProcessor(repo *repository.Repository, c *Collector, d *Deduplicator, l *logger.Logger) *Processor {
	return &Processor{
		Repository:   repo,
		Collector:    c,
		Deduplicator: d,
		Logger:       l,
		now:          time.Now,
	}
}

// ProcessWebhook returns one bundle per alert, in input order. A repeated
// alert returns the bundle that is already stored. Any storage error, or
// cancellation of ctx, rolls back every bundle of the delivery.
func (p *Processor) ProcessWebhook(ctx context.Context, webhook *types.AlertmanagerWebhook) ([]*models.AlertContext, error) {
	var res []*models.AlertContext
	var duplicates int

	err := p.Repository.Transaction(func(txRepo *repository.Repository) error {
		res = make([]*models.AlertContext, 0, len(webhook.Alerts))
		duplicates = 0

		for _, alert := range webhook.Alerts {
			rec := NewAlertRecord(alert, p.now())

			existing, err := p.Deduplicator.Check(txRepo.AlertContext, rec)

			if err != nil {
				return fmt.Errorf("error checking for duplicate of %s: %w", rec.AlertName(), err)
			}

			if existing != nil {
				p.Logger.Info().Caller().Msgf("alert %s for workload %q is a duplicate of %s", rec.AlertName(), rec.Workload, existing.ID)
				duplicates++
				res = append(res, existing)
				continue
			}

			ac := p.Collector.Collect(ctx, rec)

			// an abandoned delivery must not leave a bundle behind for the
			// retry to be deduplicated against
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("delivery abandoned while collecting %s: %w", rec.AlertName(), err)
			}

			if _, err := txRepo.AlertContext.CreateAlertContext(ac); err != nil {
				return fmt.Errorf("error storing context for %s: %w", rec.AlertName(), err)
			}

			p.Logger.Info().Caller().Msgf("stored context %s for alert %s", ac.ID, rec.AlertName())
			res = append(res, ac)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	for _, alert := range webhook.Alerts {
		status := string(alert.Status)

		if status == "" {
			status = string(types.AlertStatusFiring)
		}

		metrics.AlertsReceived.WithLabelValues(status).Inc()
	}

	metrics.AlertDuplicates.Add(float64(duplicates))

	return res, nil
}
