package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/transitstack/exosift/internal/classifier"
	"github.com/transitstack/exosift/internal/models"
	"github.com/transitstack/exosift/internal/schema"
)

// ModelClient defines the classification service operations used by the
// pipeline.
type ModelClient interface {
	CheckReady(ctx context.Context) error
	Submit(ctx context.Context, records []models.Record) ([]models.Prediction, error)
}

// Mode selects the classification strategy for a batch.
type Mode string

const (
	// ModeAuto uses the model service when it is ready, otherwise the
	// heuristic.
	ModeAuto Mode = "auto"
	// ModeService requires the model service; an unavailable service is a
	// fatal batch error.
	ModeService Mode = "service"
	// ModeHeuristic bypasses the model service entirely.
	ModeHeuristic Mode = "heuristic"
)

// ParseMode validates a mode string, defaulting empty input to ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeService, ModeHeuristic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown classification mode %q", s)
	}
}

// RunResult carries a batch summary alongside the per-row predictions and
// non-fatal reconciliation warnings.
type RunResult struct {
	Summary     models.Summary
	Predictions []models.Prediction
	Warnings    []string
}

// Pipeline orchestrates the parse -> validate -> classify -> evaluate ->
// summarize flow. Each run operates on its own records and summary; nothing
// is shared across invocations.
type Pipeline struct {
	logger     *slog.Logger
	client     ModelClient
	reconciler *schema.Reconciler
	heuristic  *classifier.Heuristic
}

// NewPipeline constructs a classification pipeline.
func NewPipeline(logger *slog.Logger, client ModelClient, reconciler *schema.Reconciler, heuristic *classifier.Heuristic) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if reconciler == nil {
		reconciler = schema.NewReconciler(logger)
	}
	if heuristic == nil {
		heuristic = classifier.NewHeuristic()
	}
	return &Pipeline{
		logger:     logger,
		client:     client,
		reconciler: reconciler,
		heuristic:  heuristic,
	}
}

// Run classifies one raw delimited-text batch. The strategy is selected once
// before submission and never mixed mid-batch; prediction order always
// matches input record order whichever strategy produced it.
func (p *Pipeline) Run(ctx context.Context, rawText string, mode Mode) (RunResult, error) {
	parsed, err := p.reconciler.Parse(rawText)
	if err != nil {
		return RunResult{}, err
	}
	if err := parsed.Validate(); err != nil {
		return RunResult{}, err
	}

	source, err := p.selectStrategy(ctx, mode)
	if err != nil {
		return RunResult{}, err
	}

	var predictions []models.Prediction
	switch source {
	case models.SourceService:
		predictions, err = p.client.Submit(ctx, parsed.Records)
		if err != nil {
			return RunResult{}, err
		}
	default:
		predictions = make([]models.Prediction, 0, len(parsed.Records))
		for i := range parsed.Records {
			predictions = append(predictions, p.heuristic.Predict(&parsed.Records[i]))
		}
	}

	evaluation := Evaluate(predictions, nil)

	summary, err := Summarize(predictions, source, evaluation)
	if err != nil {
		return RunResult{}, err
	}

	p.logger.Debug("batch classified",
		slog.String("batch_id", summary.BatchID),
		slog.String("source", string(source)),
		slog.Int("records", summary.Total),
		slog.Int("positives", summary.PositiveCount),
		slog.Bool("evaluated", evaluation != nil),
	)

	return RunResult{
		Summary:     summary,
		Predictions: predictions,
		Warnings:    parsed.Warnings,
	}, nil
}

// selectStrategy decides once per batch whether the service or the heuristic
// classifies the records. There is no per-record fallback after this point.
func (p *Pipeline) selectStrategy(ctx context.Context, mode Mode) (models.ClassificationSource, error) {
	switch mode {
	case ModeHeuristic:
		return models.SourceHeuristic, nil
	case ModeService:
		if p.client == nil {
			return "", &models.ServiceUnavailableError{Reason: "model service not configured"}
		}
		if err := p.client.CheckReady(ctx); err != nil {
			return "", err
		}
		return models.SourceService, nil
	default:
		if p.client == nil {
			return models.SourceHeuristic, nil
		}
		if err := p.client.CheckReady(ctx); err != nil {
			p.logger.Warn("model service not ready, using heuristic", slog.Any("error", err))
			return models.SourceHeuristic, nil
		}
		return models.SourceService, nil
	}
}
