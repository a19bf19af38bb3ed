package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inflector/internal/config"
	"inflector/internal/logging"
)

func testConfig() *config.Config {
	return &config.Config{
		Inflection: config.InflectionConfig{
			ExtraIrregular: map[string]string{"cactus": "cacti"},
			CacheEnabled:   true,
		},
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
			MaxBatchSize:    3,
			MaxBodyBytes:    1024,
		},
		Observability: config.ObservabilityConfig{
			ServiceName: "inflector-test",
			Logging:     config.LoggingConfig{Level: "error", Format: "text"},
		},
	}
}

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: "error", Format: "text", Output: io.Discard})
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := testLogger()
	engine := NewEngine(cfg, logger, nil)
	return wrapHTTPHandler(cfg, logger, nil, buildRouter(cfg, logger, engine, nil, nil))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestOperationEndpoint(t *testing.T) {
	h := newTestHandler(t, testConfig())

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"plural", "/v1/plural?word=cat", `{"operation":"plural","input":"cat","count":0,"result":"cats"}`},
		{"plural with count one", "/v1/plural?word=cat&count=1", `{"operation":"plural","input":"cat","count":1,"result":"cat"}`},
		{"plural non-numeric count", "/v1/plural?word=cat&count=many", `{"operation":"plural","input":"cat","result":"cats"}`},
		{"singular", "/v1/singular?word=boxes", `{"operation":"singular","input":"boxes","count":1,"result":"box"}`},
		{"singular other count", "/v1/singular?word=boxes&count=2", `{"operation":"singular","input":"boxes","count":2,"result":"boxes"}`},
		{"configured irregular", "/v1/plural?word=cactus", `{"operation":"plural","input":"cactus","count":0,"result":"cacti"}`},
		{"uncountable", "/v1/uncountable?word=Sheep", `{"operation":"uncountable","input":"Sheep","result":"true"}`},
		{"camelize", "/v1/camelize?word=some_value", `{"operation":"camelize","input":"some_value","result":"SomeValue"}`},
		{"decamelize", "/v1/decamelize?word=someValue", `{"operation":"decamelize","input":"someValue","result":"some value"}`},
		{"decamelize separator", "/v1/decamelize?word=someValue&separator=-", `{"operation":"decamelize","input":"someValue","result":"some-value"}`},
		{"underscore", "/v1/underscore?word=some+value", `{"operation":"underscore","input":"some value","result":"some_value"}`},
		{"humanize", "/v1/humanize?word=some_value", `{"operation":"humanize","input":"some_value","result":"some value"}`},
		{"case-insensitive operation", "/v1/PLURAL?word=dog", `{"operation":"plural","input":"dog","count":0,"result":"dogs"}`},
		{"empty word", "/v1/plural?word=", `{"operation":"plural","input":"","count":0,"result":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestOperationEndpoint_Errors(t *testing.T) {
	h := newTestHandler(t, testConfig())

	t.Run("unknown operation", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/v1/pluralize?word=cat", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "pluralize")
	})

	t.Run("missing word", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/v1/plural", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "word")
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/plural?word=cat", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
		assert.Equal(t, "method not allowed", decode[map[string]string](t, rec)["error"])
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/v2/plural", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not found", decode[map[string]string](t, rec)["error"])
	})
}

func TestBatchEndpoint(t *testing.T) {
	h := newTestHandler(t, testConfig())

	body := `{"items":[
		{"operation":"plural","word":"ox"},
		{"operation":"singular","word":"cats","count":"2"},
		{"operation":"explode","word":"x"}
	]}`
	rec := do(t, h, http.MethodPost, "/v1/batch", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{"results":[
		{"operation":"plural","input":"ox","count":0,"result":"oxen"},
		{"operation":"singular","input":"cats","count":2,"result":"cats"},
		{"operation":"explode","input":"x","result":"","error":"unknown operation \"explode\""}
	]}`, rec.Body.String())
}

func TestBatchEndpoint_Limits(t *testing.T) {
	h := newTestHandler(t, testConfig())

	t.Run("empty batch", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/batch", `{"items":[]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
	})

	t.Run("too many items", func(t *testing.T) {
		items := strings.Repeat(`{"operation":"plural","word":"a"},`, 4)
		rec := do(t, h, http.MethodPost, "/v1/batch", `{"items":[`+strings.TrimSuffix(items, ",")+`]}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		word := strings.Repeat("a", 2048)
		rec := do(t, h, http.MethodPost, "/v1/batch", `{"items":[{"operation":"plural","word":"`+word+`"}]}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/batch", `{"items":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "malformed batch request")
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/v1/batch", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})
}

func TestDecodeCount(t *testing.T) {
	n, ok := decodeCount("plural", nil)
	assert.False(t, ok)
	assert.Zero(t, n)

	_, ok = decodeCount("plural", json.RawMessage("null"))
	assert.False(t, ok)

	n, ok = decodeCount("plural", json.RawMessage("3"))
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)

	n, ok = decodeCount("singular", json.RawMessage(`""`))
	assert.True(t, ok)
	assert.Equal(t, 1.0, n)

	n, ok = decodeCount("plural", json.RawMessage("true"))
	assert.True(t, ok)
	assert.NotEqual(t, n, n) // NaN
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, testConfig())

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNormalizeHTTPSpanRoute(t *testing.T) {
	tests := map[string]string{
		"/health":          "/health",
		"/metrics":         "/metrics",
		"/v1/batch":        "/v1/batch",
		"/v1/plural":       "/v1/{operation}",
		"/v1/":             "/*",
		"/v1/plural/extra": "/*",
		"/":                "/*",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeHTTPSpanRoute(in), in)
	}

	assert.Equal(t, "GET /v1/{operation}", httpRootSpanName(httptest.NewRequest(http.MethodGet, "/v1/camelize", nil)))
	assert.Equal(t, "HTTP /*", httpRootSpanName(nil))
}
