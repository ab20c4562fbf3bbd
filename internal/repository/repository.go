package repository

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB

	AlertContext *AlertContextRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:           db,
		AlertContext: NewAlertContextRepository(db),
	}
}

// Transaction runs fn against a repository bound to a single database
// transaction. The transaction commits if fn returns nil and rolls back otherwise.
func (r *Repository) Transaction(fn func(txRepo *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Ping checks that the underlying database connection is usable.
func (r *Repository) Ping() error {
	sqlDB, err := r.DB.DB()

	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
