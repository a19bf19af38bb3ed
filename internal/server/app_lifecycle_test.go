package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inflector/internal/config"
)

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	_, err := New(nil, testLogger())
	assert.Error(t, err)

	_, err = New(testConfig(), nil)
	assert.Error(t, err)
}

func TestWaitForStop_SignalWins(t *testing.T) {
	app := &App{logger: testLogger()}
	stop := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)

	stop <- syscall.SIGTERM

	reason, err := app.WaitForStop(stop, serverErrors)
	require.NoError(t, err)
	assert.Equal(t, "signal", reason)
}

func TestWaitForStop_ServerErrorWins(t *testing.T) {
	app := &App{logger: testLogger()}
	stop := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)
	serverErrors <- errors.New("boom")

	reason, err := app.WaitForStop(stop, serverErrors)
	require.Error(t, err)
	assert.Equal(t, "server_error", reason)
	assert.Contains(t, err.Error(), "boom")
}

func TestWaitForStop_NoChannels(t *testing.T) {
	app := &App{logger: testLogger()}
	_, err := app.WaitForStop(nil, nil)
	assert.Error(t, err)
}

func TestShutdown_Idempotent(t *testing.T) {
	app := &App{logger: testLogger()}
	var calls int32
	app.cleanup.push("test", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, app.Shutdown(ctx))
	require.NoError(t, app.Shutdown(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCleanupStack_RunsInReverseOrder(t *testing.T) {
	var order []string
	stack := cleanupStack{}
	for _, name := range []string{"first", "second", "third"} {
		stack.push(name, func(context.Context) error {
			order = append(order, name)
			if name == "second" {
				return errors.New("ignored")
			}
			return nil
		})
	}

	stack.run(context.Background(), testLogger())
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestStart_BeforeInit_Fails(t *testing.T) {
	app := &App{logger: testLogger()}
	_, err := app.Start()
	assert.Error(t, err)
}

func TestStartAndShutdown_HappyPath(t *testing.T) {
	app := &App{
		cfg:    testConfig(),
		logger: testLogger(),
		srv: &http.Server{
			Addr:    "127.0.0.1:0",
			Handler: http.NewServeMux(),
		},
		initialized: true,
	}
	app.cleanup.push("HTTP server", func(ctx context.Context) error {
		return app.srv.Shutdown(ctx)
	})

	errs, err := app.Start()
	require.NoError(t, err)

	again, err := app.Start()
	require.NoError(t, err)
	assert.Equal(t, errs, again)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, app.Shutdown(ctx))
}

func TestInit_BuildsEngineAndHandler(t *testing.T) {
	cfg := testConfig()
	cfg.Inflection.PreserveYStem = true

	app, err := New(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	// Idempotent.
	require.NoError(t, app.Init(context.Background()))

	require.NotNil(t, app.Engine())
	assert.Equal(t, "cities", app.Engine().Plural("city"))
	assert.Equal(t, "cacti", app.Engine().Plural("cactus"))

	rec := do(t, app.Handler(), http.MethodGet, "/v1/plural?word=city", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result":"cities"`)

	// Metrics are disabled, so /metrics falls through to the JSON 404.
	rec = do(t, app.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInit_WithMetricsServesPrometheus(t *testing.T) {
	cfg := testConfig()
	cfg.Observability.MetricsEnabled = true

	app, err := New(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	h := app.Handler()
	do(t, h, http.MethodGet, "/v1/plural?word=dog", "")
	do(t, h, http.MethodGet, "/v1/plural?word=dog", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "inflector_operations_total")
	assert.Contains(t, body, `source="http"`)
	assert.Contains(t, body, "inflector_cache_hits")
	assert.Contains(t, body, "inflector_request_duration")
}

func TestInitFailure_DoesNotMarkInitialized(t *testing.T) {
	cfg := testConfig()
	cfg.Observability.TracingEnabled = true
	cfg.Observability.OTLP = config.OTLPConfig{Protocol: "carrier-pigeon"}

	app, err := New(cfg, testLogger())
	require.NoError(t, err)

	require.Error(t, app.Init(context.Background()))

	app.stateMu.Lock()
	initialized := app.initialized
	app.stateMu.Unlock()
	assert.False(t, initialized)
	assert.Nil(t, app.Handler())
}
