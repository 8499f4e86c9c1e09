package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/platform-allocator/internal/allocator"
	"github.com/eugenenazirov/platform-allocator/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	defaultMaxItems = 100_000

	// bytesPerWeight bounds one encoded weight plus its separator; a float64
	// needs at most 24 characters in JSON.
	bytesPerWeight = 32
	// envelopeBytes covers the object keys, limit, and whitespace around the array.
	envelopeBytes = 4 << 10
)

// Handler wires allocator and storage dependencies into HTTP handlers.
type Handler struct {
	allocator allocator.Allocator
	storage   storage.Storage
	maxItems  int

	clock func() time.Time

	mu             sync.RWMutex
	limitUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxItems caps the number of weights accepted in a single request.
func WithMaxItems(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxItems = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(alloc allocator.Allocator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		allocator: alloc,
		storage:   store,
		maxItems:  defaultMaxItems,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.limitUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetLimit(w http.ResponseWriter, r *http.Request) {
	_ = r
	limit, err := h.storage.GetLimit()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := limitResponse{
		Limit:     limit,
		UpdatedAt: h.currentLimitUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutLimit(w http.ResponseWriter, r *http.Request) {
	var req limitRequest
	if !decodeJSON(w, r, envelopeBytes, &req, "unable to parse JSON payload") {
		return
	}

	if req.Limit == nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", "limit is required")
		return
	}

	if err := h.storage.SetLimit(*req.Limit); err != nil {
		if errors.Is(err, storage.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "Invalid limit", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markLimitUpdated()

	limit, err := h.storage.GetLimit()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := limitResponse{
		Limit:     limit,
		UpdatedAt: h.currentLimitUpdatedAt(),
		Message:   "Limit updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	var req platformsRequest
	if !decodeJSON(w, r, h.maxBodyBytes(), &req, "unable to parse JSON payload; weights must be numbers") {
		return
	}

	if len(req.Weights) > h.maxItems {
		writeError(w, http.StatusRequestEntityTooLarge, "Too many items",
			fmt.Sprintf("at most %d weights are accepted per request, got %d", h.maxItems, len(req.Weights)))
		return
	}

	limit, err := h.resolveLimit(req.Limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	var (
		count   int
		plan    *allocator.Plan[float64]
		calcErr error
	)
	if req.IncludePlan {
		var p allocator.Plan[float64]
		p, calcErr = h.allocator.Allocate(req.Weights, limit)
		count, plan = p.Count(), &p
	} else {
		count, calcErr = h.allocator.MinPlatforms(req.Weights, limit)
	}
	elapsed := time.Since(start)

	if calcErr != nil {
		switch {
		case errors.Is(calcErr, allocator.ErrInvalidValue):
			writeError(w, http.StatusBadRequest, "Invalid value", calcErr.Error(), "weights and limit must be non-negative")
		case errors.Is(calcErr, allocator.ErrInputFormat):
			writeError(w, http.StatusBadRequest, "Invalid request", calcErr.Error())
		default:
			writeInternalError(w, calcErr)
		}
		return
	}

	var overweight int
	if plan != nil {
		overweight = plan.Overweight()
	} else {
		overweight = allocator.CountOverweight(req.Weights, limit)
	}

	resp := platformsResponse{
		Items:             len(req.Weights),
		Limit:             limit,
		Platforms:         count,
		Overweight:        overweight,
		Plan:              plan,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) maxBodyBytes() int64 {
	return int64(h.maxItems)*bytesPerWeight + envelopeBytes
}

// decodeJSON reads at most maxBytes of the body into dst. It writes the error
// response itself and reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any, details string) bool {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid request", details)
	return false
}

func (h *Handler) resolveLimit(requested *float64) (float64, error) {
	if requested != nil {
		return *requested, nil
	}
	return h.storage.GetLimit()
}

func (h *Handler) currentLimitUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.limitUpdatedAt
}

func (h *Handler) markLimitUpdated() {
	h.mu.Lock()
	h.limitUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type limitRequest struct {
	Limit *float64 `json:"limit"`
}

type platformsRequest struct {
	Weights     []float64 `json:"weights"`
	Limit       *float64  `json:"limit,omitempty"`
	IncludePlan bool      `json:"includePlan"`
}

type platformsResponse struct {
	Items             int                      `json:"items"`
	Limit             float64                  `json:"limit"`
	Platforms         int                      `json:"platforms"`
	Overweight        int                      `json:"overweight"`
	Plan              *allocator.Plan[float64] `json:"plan,omitempty"`
	CalculationTimeMs int64                    `json:"calculationTimeMs"`
}

type limitResponse struct {
	Limit     float64   `json:"limit"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
