package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inflector/internal/logging"
	"inflector/internal/observability"
	"inflector/pkg/inflect"
)

type handlers struct {
	engine       *inflect.Engine
	metrics      *observability.InflectionMetrics
	maxBatchSize int
	maxBodyBytes int64
}

// result is the response for one applied operation. Count is present for
// singular and plural and omitted when it is not a finite number.
type result struct {
	Operation string   `json:"operation"`
	Input     string   `json:"input"`
	Count     *float64 `json:"count,omitempty"`
	Result    string   `json:"result"`
	Error     string   `json:"error,omitempty"`
}

type batchRequest struct {
	Items []batchItem `json:"items"`
}

// batchItem accepts count as a number or a string; strings go through the same
// coercion as query parameters.
type batchItem struct {
	Operation string          `json:"operation"`
	Word      string          `json:"word"`
	Count     json.RawMessage `json:"count,omitempty"`
	Separator *string         `json:"separator,omitempty"`
}

type batchResponse struct {
	Results []result `json:"results"`
}

func (h *handlers) operation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	op, err := inflect.ParseOperation(r.PathValue("operation"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown operation %q", r.PathValue("operation")))
		return
	}

	query := r.URL.Query()
	if !query.Has("word") {
		writeError(w, http.StatusBadRequest, "missing required query parameter \"word\"")
		return
	}

	req := inflect.Request{Operation: op, Word: query.Get("word")}
	if query.Has("count") {
		count := inflect.ParseCount(op, query.Get("count"))
		req.Count = &count
	}
	if query.Has("separator") {
		sep := query.Get("separator")
		req.Separator = &sep
	}

	res := h.apply(r.Context(), req)
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var body batchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "malformed batch request: "+err.Error())
		return
	}

	if len(body.Items) > h.maxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch has %d items, the limit is %d", len(body.Items), h.maxBatchSize))
		return
	}

	ctx := r.Context()
	if h.metrics != nil {
		h.metrics.RecordBatchSize(ctx, len(body.Items))
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("inflector.batch.size", len(body.Items)))

	resp := batchResponse{Results: make([]result, 0, len(body.Items))}
	for _, item := range body.Items {
		op, err := inflect.ParseOperation(item.Operation)
		if err != nil {
			resp.Results = append(resp.Results, result{
				Operation: item.Operation,
				Input:     item.Word,
				Error:     fmt.Sprintf("unknown operation %q", item.Operation),
			})
			continue
		}

		req := inflect.Request{Operation: op, Word: item.Word, Separator: item.Separator}
		if count, ok := decodeCount(op, item.Count); ok {
			req.Count = &count
		}
		resp.Results = append(resp.Results, h.apply(ctx, req))
	}

	logging.FromContext(ctx).Debug("batch applied", "items", len(body.Items))
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) apply(ctx context.Context, req inflect.Request) result {
	out, err := h.engine.Apply(req)
	if err != nil {
		return result{Operation: string(req.Operation), Input: req.Word, Error: err.Error()}
	}

	if h.metrics != nil {
		h.metrics.RecordOperation(ctx, req.Operation, observability.SourceHTTP)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("inflector.operation", string(req.Operation)))

	res := result{Operation: string(req.Operation), Input: req.Word, Result: out}
	if req.Operation == inflect.OpSingular || req.Operation == inflect.OpPlural {
		count := req.Operation.DefaultCount()
		if req.Count != nil {
			count = *req.Count
		}
		if !math.IsNaN(count) && !math.IsInf(count, 0) {
			res.Count = &count
		}
	}
	return res
}

// decodeCount reads a JSON count. Absent or null means the operation default;
// strings are coerced like query parameters; anything else is NaN.
func decodeCount(op inflect.Operation, raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return inflect.ParseCount(op, s), true
	}
	return math.NaN(), true
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).Debug("health check passed")
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

