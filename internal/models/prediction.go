package models

// ClassificationSource identifies which strategy produced a batch.
type ClassificationSource string

const (
	SourceService   ClassificationSource = "service"
	SourceHeuristic ClassificationSource = "heuristic"
)

// Prediction is the classification outcome for one record. Created once by
// either classification path and never mutated afterwards.
type Prediction struct {
	Row                      int     `json:"row"`
	IsExoplanet              bool    `json:"is_exoplanet"`
	Confidence               float64 `json:"confidence"`
	ExoplanetProbability     float64 `json:"exoplanet_probability"`
	FalsePositiveProbability float64 `json:"false_positive_probability"`

	Record *Record `json:"-"`
}

// ConfusionCounts is the 2x2 breakdown of predicted vs actual labels for the
// records whose ground truth resolved.
type ConfusionCounts struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// Total returns the number of records counted into the matrix.
func (c ConfusionCounts) Total() int {
	return c.TruePositive + c.TrueNegative + c.FalsePositive + c.FalseNegative
}

// EvaluationMetrics holds standard binary-classification statistics derived
// from ConfusionCounts. Ratios with a zero denominator are reported as 0.
type EvaluationMetrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1Score   float64         `json:"f1_score"`
	Confusion ConfusionCounts `json:"confusion_matrix"`
	Total     int             `json:"total"`
}
