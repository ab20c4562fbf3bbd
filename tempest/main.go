package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/tempestconf"
	"github.com/kubelab/log-aggregator/pkg/httpclient"
	"github.com/kubelab/log-aggregator/pkg/server/handlers"
	"github.com/kubelab/log-aggregator/pkg/server/routes"
	"github.com/kubelab/log-aggregator/pkg/weather"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load()

	conf := tempestconf.Load(viper.New())

	l := logger.NewConsole(conf.Debug)

	if conf.APIToken == "" {
		l.Warn().Caller().Msg("WEATHERFLOW_API_TOKEN is not set, every weather tool will fail")
	}

	if !conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	client := weather.NewClient(conf.BaseURL, conf.APIToken, httpclient.NewClient(&httpclient.HTTPClientConf{}))
	service := weather.NewService(client, weather.NewCache(conf.CacheSize, conf.CacheTTL), l)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler: routes.NewRouter(handlers.New(service, l, conf.Version)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Caller().Msgf("error shutting down tempest server: %v", err)
		}
	}()

	l.Info().Caller().Msgf("tempest weather tools %s listening on %s", conf.Version, srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error().Caller().Msgf("error starting tempest server: %v", err)
	}
}
