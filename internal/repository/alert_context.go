package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/internal/utils"
	"gorm.io/gorm"
)

type AlertContextRepository struct {
	db *gorm.DB
}

// NewAlertContextRepository returns pointer to repo along with the db
func NewAlertContextRepository(db *gorm.DB) *AlertContextRepository {
	return &AlertContextRepository{db}
}

func (r *AlertContextRepository) CreateAlertContext(ac *models.AlertContext) (*models.AlertContext, error) {
	if err := r.db.Create(ac).Error; err != nil {
		return nil, err
	}

	return ac, nil
}

func (r *AlertContextRepository) ReadAlertContext(id uuid.UUID) (*models.AlertContext, error) {
	ac := &models.AlertContext{}

	if err := r.db.Where("id = ?", id).First(ac).Error; err != nil {
		return nil, err
	}

	return ac, nil
}

// FindRecentDuplicate returns the most recently created bundle for the given
// alertname, namespace and workload that was created at or after since. It
// returns nil without an error when there is no such bundle.
func (r *AlertContextRepository) FindRecentDuplicate(alertname, namespace string, workload *string, since time.Time) (*models.AlertContext, error) {
	ac := &models.AlertContext{}

	db := r.db.Where("alertname = ? AND namespace = ? AND created_at >= ?", alertname, namespace, since.UTC())

	if workload == nil {
		db = db.Where("workload IS NULL")
	} else {
		db = db.Where("workload = ?", *workload)
	}

	err := db.Order("created_at desc").Limit(1).Take(ac).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return ac, nil
}

func (r *AlertContextRepository) ListAlertContexts(filter *utils.ListAlertContextsFilter, opts ...utils.QueryOption) ([]*models.AlertContext, error) {
	var contexts []*models.AlertContext

	db := r.db.Scopes(utils.Paginate(opts))

	if filter.FiredAfter != nil {
		db = db.Where("fired_at >= ?", filter.FiredAfter.UTC())
	}

	if filter.FiredBefore != nil {
		db = db.Where("fired_at < ?", filter.FiredBefore.UTC())
	}

	if filter.Namespace != nil {
		db = db.Where("namespace = ?", *filter.Namespace)
	}

	if filter.Severity != nil {
		db = db.Where("severity = ?", *filter.Severity)
	}

	if err := db.Find(&contexts).Error; err != nil {
		return nil, err
	}

	return contexts, nil
}

// DeleteFiredBetween hard-deletes every bundle with fired_at in [start, end).
func (r *AlertContextRepository) DeleteFiredBetween(start, end time.Time) (int64, error) {
	res := r.db.Where("fired_at >= ? AND fired_at < ?", start.UTC(), end.UTC()).Delete(&models.AlertContext{})

	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// DeleteCreatedBefore hard-deletes every bundle created strictly before cutoff.
func (r *AlertContextRepository) DeleteCreatedBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff.UTC()).Delete(&models.AlertContext{})

	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
