package engine

import (
	"strconv"
	"strings"

	"github.com/transitstack/exosift/internal/models"
)

// GroundTruthExtractor resolves the actual 0/1 label for a record. The
// boolean reports whether the record carried a usable label at all.
type GroundTruthExtractor func(*models.Record) (int, bool)

// ResolveGroundTruth checks the accepted alias names in fixed priority order
// and parses the first present value as an integer label. Absent or
// unparseable values disqualify the record from evaluation without error.
func ResolveGroundTruth(rec *models.Record) (int, bool) {
	if rec == nil {
		return 0, false
	}
	for _, alias := range models.GroundTruthAliases {
		if rec.TruthField != alias {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(rec.TruthValue))
		if err != nil || (v != 0 && v != 1) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Evaluate accumulates a confusion matrix over predictions with resolvable
// ground truth and derives the standard binary-classification statistics.
// Returns nil when no record in the batch has a usable label.
//
// Ratio conventions: a zero denominator yields 0, never an error. Zero
// predicted positives means precision 0; zero actual positives means
// recall 0.
func Evaluate(predictions []models.Prediction, extract GroundTruthExtractor) *models.EvaluationMetrics {
	if extract == nil {
		extract = ResolveGroundTruth
	}

	var counts models.ConfusionCounts
	for _, p := range predictions {
		truth, ok := extract(p.Record)
		if !ok {
			continue
		}
		actual := truth == 1
		switch {
		case actual && p.IsExoplanet:
			counts.TruePositive++
		case !actual && !p.IsExoplanet:
			counts.TrueNegative++
		case !actual && p.IsExoplanet:
			counts.FalsePositive++
		default:
			counts.FalseNegative++
		}
	}

	total := counts.Total()
	if total == 0 {
		return nil
	}

	precision := safeRatio(float64(counts.TruePositive), float64(counts.TruePositive+counts.FalsePositive))
	recall := safeRatio(float64(counts.TruePositive), float64(counts.TruePositive+counts.FalseNegative))

	return &models.EvaluationMetrics{
		Accuracy:  float64(counts.TruePositive+counts.TrueNegative) / float64(total),
		Precision: precision,
		Recall:    recall,
		F1Score:   safeRatio(2*precision*recall, precision+recall),
		Confusion: counts,
		Total:     total,
	}
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
