package models

import "time"

// Summary aggregates one classification batch. Read-only after construction.
type Summary struct {
	BatchID        string               `json:"batch_id"`
	Source         ClassificationSource `json:"source"`
	Total          int                  `json:"total"`
	PositiveCount  int                  `json:"positive_count"`
	NegativeCount  int                  `json:"negative_count"`
	DetectionRate  float64              `json:"detection_rate"`
	MeanConfidence float64              `json:"mean_confidence"`
	Evaluation     *EvaluationMetrics   `json:"evaluation,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}
