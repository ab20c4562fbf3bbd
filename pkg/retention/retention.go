package retention

import (
	"context"
	"time"

	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/repository"
	"github.com/kubelab/log-aggregator/pkg/metrics"
	"github.com/kubelab/log-aggregator/pkg/pulsar"
)

// Sweeper deletes alert context bundles, either by age or for a whole
// calendar day once it has been processed.
type Sweeper struct {
	Repository    *repository.Repository
	RetentionDays uint
	Logger        *logger.Logger

	now func() time.Time
}

func NewSweeper(repo *repository.Repository, retentionDays uint, l *logger.Logger) *Sweeper {
	return &Sweeper{
		Repository:    repo,
		RetentionDays: retentionDays,
		Logger:        l,
		now:           time.Now,
	}
}

// PurgeExpired deletes every bundle created more than RetentionDays ago.
func (s *Sweeper) PurgeExpired() (int64, error) {
	cutoff := s.now().UTC().Add(-time.Duration(s.RetentionDays) * 24 * time.Hour)

	deleted, err := s.Repository.AlertContext.DeleteCreatedBefore(cutoff)

	if err != nil {
		return 0, err
	}

	metrics.BundlesPurged.WithLabelValues("expired").Add(float64(deleted))
	s.Logger.Info().Caller().Msgf("deleted %d alert contexts created before %s", deleted, cutoff.Format(time.RFC3339))

	return deleted, nil
}

// PurgeDay deletes every bundle that fired on the UTC calendar day of date.
// The detail for that day cannot be recovered afterwards.
func (s *Sweeper) PurgeDay(date time.Time) (int64, error) {
	start := StartOfDay(date)

	deleted, err := s.Repository.AlertContext.DeleteFiredBetween(start, start.Add(24*time.Hour))

	if err != nil {
		return 0, err
	}

	metrics.BundlesPurged.WithLabelValues("day_complete").Add(float64(deleted))
	s.Logger.Info().Caller().Msgf("deleted %d alert contexts fired on %s", deleted, start.Format("2006-01-02"))

	return deleted, nil
}

// Run purges expired bundles every interval until ctx is done. A
// non-positive interval disables the periodic sweep and returns at once.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.Logger.Info().Caller().Msg("periodic retention sweep disabled")
		return
	}

	p := pulsar.NewPulsar(1, interval)

	for range p.Pulsate(ctx) {
		if _, err := s.PurgeExpired(); err != nil {
			s.Logger.Error().Caller().Msgf("retention sweep exited with error: %v", err)
		}
	}
}

// StartOfDay returns midnight UTC of the calendar day t falls on in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
