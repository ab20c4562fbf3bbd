package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type HTTPClientConf struct {
	Timeout time.Duration `env:"HTTP_CLIENT_TIMEOUT,default=30s"`
}

// NewClient returns an http client whose transport is traced with otelhttp.
// A zero timeout falls back to 30 seconds.
func NewClient(conf *HTTPClientConf) *http.Client {
	timeout := 30 * time.Second

	if conf != nil && conf.Timeout > 0 {
		timeout = conf.Timeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
