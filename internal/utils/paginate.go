package utils

import (
	"fmt"

	"gorm.io/gorm"
)

// Paginate applies limit, offset and ordering. A zero limit means no limit.
func Paginate(opts []QueryOption) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q := Query{
			Limit:  0,
			Offset: 0,
			SortBy: "created_at",
			Order:  OrderAsc,
		}

		for _, opt := range opts {
			opt.Apply(&q)
		}

		if q.Limit > 0 {
			db = db.Limit(q.Limit)
		}

		if q.Offset > 0 {
			db = db.Offset(q.Offset)
		}

		return db.Order(fmt.Sprintf("%s %s", q.SortBy, q.Order))
	}
}
