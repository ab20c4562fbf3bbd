package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kubelab/log-aggregator/internal/envconf"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// writers wait this long for a sqlite lock instead of failing with
// "database is locked"
const sqliteBusyTimeoutMillis = 5000

func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_busy_timeout=%d", path, sqliteBusyTimeoutMillis)
}

// New returns a new gorm database instance
func New(conf *envconf.DBConf) (*gorm.DB, error) {
	gormConf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// timestamps are compared as text in sqlite, so everything is stored in UTC
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	if conf.SQLLite {
		if dir := filepath.Dir(conf.SQLLitePath); dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, fmt.Errorf("could not create sqlite directory: %w", err)
			}
		}

		return gorm.Open(sqlite.Open(sqliteDSN(conf.SQLLitePath)), gormConf)
	}

	dsn := conf.URL

	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			conf.Host,
			conf.Port,
			conf.Username,
			conf.Password,
			conf.DbName,
			conf.SSLMode,
		)
	}

	return gorm.Open(postgres.Open(dsn), gormConf)
}
