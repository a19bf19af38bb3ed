package server

import (
	"log/slog"
	"net/http"
	"strings"

	"inflector/internal/config"
	"inflector/internal/logging"
	"inflector/internal/middleware"
	"inflector/internal/observability"
	"inflector/pkg/inflect"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func buildRouter(cfg *config.Config, logger *logging.Logger, engine *inflect.Engine, metrics *observability.InflectionMetrics, meterProvider *observability.MeterProvider) *http.ServeMux {
	h := &handlers{
		engine:       engine,
		metrics:      metrics,
		maxBatchSize: cfg.Server.MaxBatchSize,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/{operation}", h.operation)
	mux.HandleFunc("/v1/batch", h.batch)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	if cfg.Observability.MetricsEnabled && meterProvider != nil {
		mux.Handle("/metrics", meterProvider.Handler())
		logger.Info("metrics endpoint enabled", slog.String("path", "/metrics"))
	}

	return mux
}

func wrapHTTPHandler(cfg *config.Config, logger *logging.Logger, metrics *observability.InflectionMetrics, handler http.Handler) http.Handler {
	var recorder middleware.DurationRecorder
	if metrics != nil {
		recorder = metrics
	}
	handler = middleware.LoggingMiddleware(logger, recorder)(handler)

	if cfg.Observability.MetricsEnabled || cfg.Observability.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return httpRootSpanName(r)
			}),
		)
		logger.Info("HTTP instrumentation enabled")
	}

	return handler
}

func httpRootSpanName(r *http.Request) string {
	if r == nil {
		return "HTTP /*"
	}

	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = "HTTP"
	}

	return method + " " + normalizeHTTPSpanRoute(r.URL.Path)
}

// normalizeHTTPSpanRoute keeps span names low-cardinality; the mux has not
// matched a pattern yet when otelhttp names the span.
func normalizeHTTPSpanRoute(rawPath string) string {
	switch rawPath {
	case "/health", "/metrics", "/v1/batch":
		return rawPath
	}
	rest, ok := strings.CutPrefix(rawPath, "/v1/")
	if ok && rest != "" && !strings.Contains(rest, "/") {
		return "/v1/{operation}"
	}
	return "/*"
}
