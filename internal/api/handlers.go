package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/transitstack/exosift/internal/engine"
	"github.com/transitstack/exosift/internal/metrics"
	"github.com/transitstack/exosift/internal/models"
	"github.com/transitstack/exosift/internal/utils"
)

// ClassifyRequest is the JSON envelope for a classification batch.
type ClassifyRequest struct {
	CSV  string `json:"csv" binding:"required"`
	Mode string `json:"mode"`
}

// ClassifyResponse carries the batch summary, per-row predictions, and any
// non-fatal reconciliation warnings.
type ClassifyResponse struct {
	Summary     models.Summary      `json:"summary"`
	Predictions []models.Prediction `json:"predictions"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// Handler exposes the classification pipeline over HTTP.
type Handler struct {
	logger      *slog.Logger
	pipeline    *engine.Pipeline
	client      engine.ModelClient
	defaultMode engine.Mode
	latencies   *utils.LatencyTracker
}

// NewHandler constructs the HTTP handler set.
func NewHandler(logger *slog.Logger, pipeline *engine.Pipeline, client engine.ModelClient, defaultMode engine.Mode) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultMode == "" {
		defaultMode = engine.ModeAuto
	}
	return &Handler{
		logger:      logger,
		pipeline:    pipeline,
		client:      client,
		defaultMode: defaultMode,
		latencies:   utils.NewLatencyTracker(1024),
	}
}

// Classify runs one batch through the pipeline. Accepts either the JSON
// envelope or a raw text/csv body.
func (h *Handler) Classify(c *gin.Context) {
	rawText, mode, ok := h.readBatch(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.pipeline.Run(c.Request.Context(), rawText, mode)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveBatch(duration, metrics.OutcomeError)
		h.logger.Error("batch classification failed", slog.Any("error", err))
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	metrics.ObserveBatch(duration, metrics.OutcomeSuccess)
	metrics.CountRecords(string(result.Summary.Source), result.Summary.Total)
	h.latencies.Observe(duration)
	if count := h.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := h.latencies.Percentile(95)
		h.logger.Info("batch latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}

	c.JSON(http.StatusOK, ClassifyResponse{
		Summary:     result.Summary,
		Predictions: result.Predictions,
		Warnings:    result.Warnings,
	})
}

// ModelHealth proxies the model service readiness probe.
func (h *Handler) ModelHealth(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "model service not configured"})
		return
	}
	if err := h.client.CheckReady(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) readBatch(c *gin.Context) (string, engine.Mode, bool) {
	var rawText, modeStr string

	if c.ContentType() == "text/csv" {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
			return "", "", false
		}
		rawText = string(body)
		modeStr = c.Query("mode")
	} else {
		var req ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
			return "", "", false
		}
		rawText = req.CSV
		modeStr = req.Mode
	}

	mode := h.defaultMode
	if modeStr != "" {
		parsed, err := engine.ParseMode(modeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return "", "", false
		}
		mode = parsed
	}
	return rawText, mode, true
}

func statusForError(err error) int {
	var (
		ingestion   *models.IngestionError
		missing     *models.MissingColumnsError
		empty       *models.EmptyBatchError
		unavailable *models.ServiceUnavailableError
		svcResponse *models.ServiceResponseError
	)
	switch {
	case errors.As(err, &ingestion), errors.As(err, &missing), errors.As(err, &empty):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &svcResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
