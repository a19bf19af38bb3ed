// Package server runs the inflector HTTP service: it owns the engine, the
// telemetry providers and the http.Server, and tears them down in reverse
// order of acquisition.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"inflector/internal/config"
	"inflector/internal/logging"
	"inflector/internal/observability"
	"inflector/pkg/inflect"
)

// App owns runtime resources for the inflector server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider

	meterProvider  *observability.MeterProvider
	metrics        *observability.InflectionMetrics
	tracerProvider *observability.TracerProvider

	engine  *inflect.Engine
	handler http.Handler

	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Handler returns the fully wrapped HTTP handler. It is nil before Init.
func (a *App) Handler() http.Handler {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.handler
}

// Engine returns the inflection engine built by Init.
func (a *App) Engine() *inflect.Engine {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.engine
}
