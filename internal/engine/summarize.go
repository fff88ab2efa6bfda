package engine

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/transitstack/exosift/internal/models"
)

// Summarize aggregates one prediction batch into a Summary, folding in the
// optional evaluation unchanged. An empty batch is an error rather than a
// zero-valued summary: rates over zero predictions are meaningless, unlike
// the evaluator's zero-denominator substitution.
func Summarize(predictions []models.Prediction, source models.ClassificationSource, evaluation *models.EvaluationMetrics) (models.Summary, error) {
	if len(predictions) == 0 {
		return models.Summary{}, &models.EmptyBatchError{}
	}

	positives := 0
	confidences := make([]float64, 0, len(predictions))
	for _, p := range predictions {
		if p.IsExoplanet {
			positives++
		}
		confidences = append(confidences, p.Confidence)
	}

	total := len(predictions)
	return models.Summary{
		BatchID:        uuid.NewString(),
		Source:         source,
		Total:          total,
		PositiveCount:  positives,
		NegativeCount:  total - positives,
		DetectionRate:  float64(positives) / float64(total),
		MeanConfidence: stat.Mean(confidences, nil),
		Evaluation:     evaluation,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
