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

	"k8s.io/client-go/kubernetes"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/kubelab/log-aggregator/api/server/config"
	alertHandlers "github.com/kubelab/log-aggregator/api/server/handlers/alert"
	healthcheckHandlers "github.com/kubelab/log-aggregator/api/server/handlers/healthcheck"
	toolHandlers "github.com/kubelab/log-aggregator/api/server/handlers/tool"
	"github.com/kubelab/log-aggregator/internal/adapter"
	"github.com/kubelab/log-aggregator/internal/envconf"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/repository"
	"github.com/kubelab/log-aggregator/pkg/event"
	"github.com/kubelab/log-aggregator/pkg/httpclient"
	"github.com/kubelab/log-aggregator/pkg/promstore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// a missing .env file is not an error
	_ = godotenv.Load()

	var envDecoderConf envconf.EnvDecoderConf = envconf.EnvDecoderConf{}

	if err := envdecode.StrictDecode(&envDecoderConf); err != nil {
		logger.NewErrorConsole(true).Fatal().Caller().Msgf("could not decode env conf: %v", err)

		os.Exit(1)
	}

	l := logger.NewConsole(envDecoderConf.Debug)

	client := httpclient.NewClient(&envDecoderConf.HTTPClientConf)

	// create database connection through adapter
	db, err := adapter.New(&envDecoderConf.DBConf)

	if err != nil {
		l.Fatal().Caller().Msgf("could not create database connection: %v", err)
	}

	if err := repository.AutoMigrate(db, envDecoderConf.Debug); err != nil {
		l.Fatal().Caller().Msgf("auto migration failed: %v", err)
	}

	repo := repository.NewRepository(db)

	logStore, err := adapter.NewLogStore(&envDecoderConf.LogStoreConf, client)

	if err != nil {
		l.Fatal().Caller().Msgf("%v", err)
	}

	var metricsSource config.MetricsSource

	if prom, err := promstore.New(promstore.Config{
		Address:    envDecoderConf.PrometheusConf.PrometheusURL,
		HTTPClient: client,
	}); err != nil {
		l.Warn().Caller().Msgf("metrics will not be collected: %v", err)
	} else {
		metricsSource = prom
	}

	var events config.EventSource

	if kubeConfig, err := ctrl.GetConfig(); err != nil {
		l.Warn().Caller().Msgf("events will not be collected, no kubernetes config found: %v", err)
	} else if kubeClient, err := kubernetes.NewForConfig(kubeConfig); err != nil {
		l.Warn().Caller().Msgf("events will not be collected, could not create kubernetes client: %v", err)
	} else {
		events = event.NewKubeSource(kubeClient)
	}

	conf, err := config.GetConfig(&envDecoderConf, l, repo, logStore, metricsSource, events)

	if err != nil {
		l.Fatal().Caller().Msgf("server config loading failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// trigger retention sweeps through pulsar
	if interval := envDecoderConf.RetentionConf.SweepInterval(); interval > 0 {
		go conf.Sweeper.Run(ctx, interval)
	} else {
		l.Info().Caller().Msg("periodic retention sweep disabled, use POST /api/cleanup or the sweep command")
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method(http.MethodGet, "/livez", healthcheckHandlers.NewLivezHandler(conf))
	r.Method(http.MethodGet, "/readyz", healthcheckHandlers.NewReadyzHandler(conf))
	r.Method(http.MethodGet, "/health", healthcheckHandlers.NewHealthHandler(conf))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Method(http.MethodPost, "/api/alert", alertHandlers.NewWebhookHandler(conf))
	r.Method(http.MethodGet, "/api/daily-summary", alertHandlers.NewDailySummaryHandler(conf))
	r.Method(http.MethodPost, "/api/complete", alertHandlers.NewMarkDayCompleteHandler(conf))
	r.Method(http.MethodPost, "/api/cleanup", alertHandlers.NewCleanupHandler(conf))

	r.Method(http.MethodGet, "/mcp/tools", toolHandlers.NewListToolsHandler(conf))
	r.Method(http.MethodPost, "/mcp/tools/{name}", toolHandlers.NewCallToolHandler(conf))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", envDecoderConf.ServerHost, envDecoderConf.ServerPort),
		Handler: r,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Caller().Msgf("error shutting down API server: %v", err)
		}
	}()

	l.Info().Caller().Msgf("log aggregator %s listening on %s", envDecoderConf.Version, srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error().Caller().Msgf("error starting API server: %v", err)
	}
}
