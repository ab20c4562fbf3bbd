// Package tempestconf loads the weather tool server's settings from the
// environment.
package tempestconf

import (
	"time"

	"github.com/spf13/viper"
)

type Conf struct {
	Host  string
	Port  int
	Debug bool

	APIToken string
	BaseURL  string

	CacheTTL  time.Duration
	CacheSize int

	Version string
}

// Load reads the configuration from v, falling back to the defaults below for
// unset keys. Every key is bound to the environment variable of the same name.
func Load(v *viper.Viper) *Conf {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8000)
	v.SetDefault("DEBUG", false)
	v.SetDefault("WEATHERFLOW_API_TOKEN", "")
	v.SetDefault("WEATHERFLOW_BASE_URL", "https://swd.weatherflow.com/swd/rest")
	v.SetDefault("WEATHERFLOW_CACHE_TTL", 300)
	v.SetDefault("WEATHERFLOW_CACHE_SIZE", 100)
	v.SetDefault("VERSION", "1.0.0")

	v.AutomaticEnv()

	return &Conf{
		Host:      v.GetString("HOST"),
		Port:      v.GetInt("PORT"),
		Debug:     v.GetBool("DEBUG"),
		APIToken:  v.GetString("WEATHERFLOW_API_TOKEN"),
		BaseURL:   v.GetString("WEATHERFLOW_BASE_URL"),
		CacheTTL:  time.Duration(v.GetInt("WEATHERFLOW_CACHE_TTL")) * time.Second,
		CacheSize: v.GetInt("WEATHERFLOW_CACHE_SIZE"),
		Version:   v.GetString("VERSION"),
	}
}
