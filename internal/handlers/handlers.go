// Package handlers provides HTTP request handlers for the prediction API.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oremus-labs/ol-housing-predictor/internal/events"
	"github.com/oremus-labs/ol-housing-predictor/internal/inference"
	"github.com/oremus-labs/ol-housing-predictor/internal/logutil"
	"github.com/oremus-labs/ol-housing-predictor/internal/metrics"
	"github.com/oremus-labs/ol-housing-predictor/internal/store"
	"github.com/oremus-labs/ol-housing-predictor/internal/validator"
)

// Options configures handler runtime behavior.
type Options struct {
	Version      string
	ModelPath    string
	ScalerPath   string
	DataStoreDSN string
}

type auditLog interface {
	Append(*store.Record) (int64, error)
	QueryStats(start, end string) (*store.Stats, error)
	RecentRecords(limit int) ([]store.Record, error)
}

type predictor interface {
	Predict(inference.Features) (*inference.Prediction, error)
	Identity() inference.ModelIdentity
}

// Handler encapsulates dependencies for HTTP handlers.
type Handler struct {
	engine     predictor
	audit      auditLog
	checker    *validator.Validator
	bus        *events.Bus
	exposition http.Handler
	opts       Options
}

// New creates a new Handler instance.
func New(engine predictor, audit auditLog, checker *validator.Validator, bus *events.Bus, opts Options) *Handler {
	return &Handler{
		engine:     engine,
		audit:      audit,
		checker:    checker,
		bus:        bus,
		exposition: promhttp.Handler(),
		opts:       opts,
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type inferenceErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Root returns the static welcome payload.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Housing Price Prediction API"})
}

// Health returns the health status of the service.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SystemInfo reports version, model identity, and storage wiring.
func (h *Handler) SystemInfo(c *gin.Context) {
	identity := h.engine.Identity()
	c.JSON(http.StatusOK, gin.H{
		"version":      h.opts.Version,
		"modelType":    identity.Type,
		"modelVersion": identity.Version,
		"modelPath":    h.opts.ModelPath,
		"scalerPath":   h.opts.ScalerPath,
		"datastoreDsn": h.opts.DataStoreDSN,
	})
}

// Predict validates the request body, runs inference, and appends exactly
// one audit record whose status code matches the response. The record is
// written before the response so every terminal state is durable.
func (h *Handler) Predict(c *gin.Context) {
	metrics.IncPredictionAttempts()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.reject(c, http.StatusBadRequest, "malformed request body",
			[]string{"failed to read request body: " + err.Error()}, "")
		return
	}

	result := h.checker.Validate(body)
	switch {
	case result.Malformed:
		h.reject(c, http.StatusBadRequest, "malformed request body", result.Violations, string(body))
		return
	case !result.Valid:
		h.reject(c, http.StatusUnprocessableEntity, "validation failed", result.Violations, string(body))
		return
	}

	var features inference.Features
	if err := json.Unmarshal(body, &features); err != nil {
		h.reject(c, http.StatusUnprocessableEntity, "validation failed", []string{err.Error()}, string(body))
		return
	}

	prediction, err := h.engine.Predict(features)
	if err != nil {
		h.appendRecord(c, &store.Record{
			InputJSON:    string(body),
			StatusCode:   http.StatusInternalServerError,
			ErrorMessage: err.Error(),
		})
		h.publishEvent(c, events.TypePredictionFailed, gin.H{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, inferenceErrorResponse{
			Error:   "inference failed",
			Details: err.Error(),
		})
		return
	}

	predictionJSON, err := json.Marshal(prediction)
	if err != nil {
		h.appendRecord(c, &store.Record{
			InputJSON:    string(body),
			StatusCode:   http.StatusInternalServerError,
			ErrorMessage: "failed to serialize prediction: " + err.Error(),
		})
		c.JSON(http.StatusInternalServerError, inferenceErrorResponse{
			Error:   "inference failed",
			Details: err.Error(),
		})
		return
	}

	h.appendRecord(c, &store.Record{
		InputJSON:      string(body),
		PredictionJSON: string(predictionJSON),
		StatusCode:     http.StatusOK,
	})
	h.publishEvent(c, events.TypePredictionCompleted, gin.H{
		"predictedPrice": prediction.PredictedPrice,
		"modelVersion":   prediction.ModelVersion,
	})

	c.JSON(http.StatusOK, prediction)
}

// reject logs a 400/422 outcome and returns the matching error body. The
// raw request body is archived verbatim since structured parsing failed.
func (h *Handler) reject(c *gin.Context, status int, summary string, details []string, rawInput string) {
	h.appendRecord(c, &store.Record{
		InputJSON:    rawInput,
		StatusCode:   status,
		ErrorMessage: summary + ": " + strings.Join(details, "; "),
	})
	h.publishEvent(c, events.TypePredictionRejected, gin.H{
		"statusCode": status,
		"details":    details,
	})
	c.JSON(status, errorResponse{Error: summary, Details: details})
}

// appendRecord stamps the model identity and appends the audit record. An
// append failure must never alter the response the caller already earned;
// it is surfaced through the operational channel instead.
func (h *Handler) appendRecord(c *gin.Context, record *store.Record) {
	identity := h.engine.Identity()
	record.ModelType = identity.Type
	record.ModelVersion = identity.Version
	if _, err := h.audit.Append(record); err != nil {
		metrics.IncAuditAppendFailure()
		logutil.Error("audit append failed", err, map[string]interface{}{
			"status_code": record.StatusCode,
			"request_id":  requestID(c),
		})
	}
}

// MetricsExposition publishes a fresh snapshot to the exposition registry
// and serves the Prometheus text format.
func (h *Handler) MetricsExposition(c *gin.Context) {
	stats, ok := h.computeStats(c)
	if !ok {
		return
	}
	metrics.Publish(stats)
	h.exposition.ServeHTTP(c.Writer, c.Request)
}

// MetricsJSON serves the current snapshot as JSON, independent of gauge state.
func (h *Handler) MetricsJSON(c *gin.Context) {
	stats, ok := h.computeStats(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PredictionStats is an alternate read-only view with metrics-json semantics.
func (h *Handler) PredictionStats(c *gin.Context) {
	h.MetricsJSON(c)
}

// ListRecords returns the newest audit records. A limit of 0 returns the
// entire log; negative limits are rejected.
func (h *Handler) ListRecords(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	records, err := h.audit.RecentRecords(limit)
	if err != nil {
		log.Printf("Failed to list audit records: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit records"})
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// StreamEvents serves prediction outcome events over SSE.
func (h *Handler) StreamEvents(c *gin.Context) {
	if h.bus == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event streaming is disabled"})
		return
	}

	ch, cancel, err := h.bus.Subscribe(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			c.Writer.Flush()
		}
	}
}

func (h *Handler) computeStats(c *gin.Context) (*store.Stats, bool) {
	start, err := parseWindowParam(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	end, err := parseWindowParam(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	stats, err := h.audit.QueryStats(start, end)
	if err != nil {
		log.Printf("Failed to query audit log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit log"})
		return nil, false
	}
	return stats, true
}

var windowLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseWindowParam validates an ISO-8601 boundary and normalizes it to the
// canonical audit timestamp layout so string comparison stays chronological.
func parseWindowParam(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, layout := range windowLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return store.FormatTime(t), nil
		}
	}
	return "", fmt.Errorf("invalid ISO-8601 timestamp: %q", value)
}

func (h *Handler) publishEvent(c *gin.Context, eventType string, data interface{}) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(c.Request.Context(), events.Event{
		Type:      eventType,
		RequestID: requestID(c),
		Data:      data,
	}); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func requestID(c *gin.Context) string {
	id, _ := c.Get("requestID")
	s, _ := id.(string)
	return s
}
