package envconf

import (
	"time"

	"github.com/kubelab/log-aggregator/pkg/httpclient"
)

type DBConf struct {
	// URL takes precedence over the individual connection fields when set
	URL string `env:"DATABASE_URL"`

	Host     string `env:"DB_HOST,default=postgres"`
	Port     int    `env:"DB_PORT,default=5432"`
	Username string `env:"DB_USER,default=log_aggregator"`
	Password string `env:"DB_PASS,default=log_aggregator"`
	DbName   string `env:"DB_NAME,default=log_aggregator"`
	SSLMode  string `env:"DB_SSL_MODE,default=disable"`

	SQLLite     bool   `env:"SQL_LITE,default=false"`
	SQLLitePath string `env:"SQL_LITE_PATH,default=/var/lib/log-aggregator/alerts.db"`
}

type LogStoreConf struct {
	LogStoreKind string `env:"LOG_STORE_KIND,default=loki"`
	LokiURL      string `env:"LOKI_URL,default=http://loki.monitoring.svc:3100"`
	LogStoreDir  string `env:"LOG_STORE_DIR"`
}

type PrometheusConf struct {
	PrometheusURL string `env:"PROMETHEUS_URL,default=http://prometheus.monitoring.svc:9090"`
}

type CollectorConf struct {
	LogWindowMinutes          uint          `env:"LOKI_LOG_WINDOW_MINUTES,default=30"`
	MaxLogLines               uint32        `env:"LOKI_MAX_LOG_LINES,default=1000"`
	PreviousLogLines          uint32        `env:"LOKI_PREVIOUS_LOGS_LINES,default=30"`
	PreviousLogsLookbackHours uint          `env:"PREVIOUS_LOGS_LOOKBACK_HOURS,default=6"`
	DedupWindowHours          uint          `env:"ALERT_DEDUP_WINDOW_HOURS,default=1"`
	QueryTimeout              time.Duration `env:"QUERY_TIMEOUT,default=30s"`
}

type RetentionConf struct {
	RetentionDays        uint `env:"ALERT_RETENTION_DAYS,default=7"`
	SweepIntervalMinutes uint `env:"RETENTION_SWEEP_INTERVAL_MINUTES,default=60"`
}

type EnvDecoderConf struct {
	Debug      bool   `env:"DEBUG,default=false"`
	ServerHost string `env:"SERVER_HOST,default=0.0.0.0"`
	ServerPort uint   `env:"SERVER_PORT,default=8080"`
	Version    string `env:"VERSION,default=1.0.0"`

	LogStoreConf   LogStoreConf
	PrometheusConf PrometheusConf
	CollectorConf  CollectorConf
	RetentionConf  RetentionConf
	HTTPClientConf httpclient.HTTPClientConf
	DBConf         DBConf
}

func (c CollectorConf) LogWindow() time.Duration {
	return time.Duration(c.LogWindowMinutes) * time.Minute
}

func (c CollectorConf) PreviousLogsLookback() time.Duration {
	return time.Duration(c.PreviousLogsLookbackHours) * time.Hour
}

func (c CollectorConf) DedupWindow() time.Duration {
	return time.Duration(c.DedupWindowHours) * time.Hour
}

func (c RetentionConf) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
