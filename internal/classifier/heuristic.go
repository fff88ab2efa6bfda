package classifier

import (
	"github.com/transitstack/exosift/internal/models"
)

// Fixed additive scoring weights. These are design constants, not learned
// parameters; the heuristic only runs when the model service is unreachable
// or explicitly bypassed.
const (
	labelThreshold = 4.0
	maxScore       = 12.0

	confidenceFloor   = 0.50
	confidenceCeiling = 0.99
)

// Assessment is the raw outcome of the rule-based scorer for one record.
type Assessment struct {
	IsExoplanet bool
	Score       float64
	Confidence  float64
	Factors     []string
}

// Heuristic is a deterministic fallback classifier. Identical records always
// produce identical assessments; no external calls are made.
type Heuristic struct{}

// NewHeuristic constructs the fallback classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Classify scores a record against the transit-signal point system and
// annotates the record with its raw score and contributing factors.
func (h *Heuristic) Classify(rec *models.Record) Assessment {
	score := 0.0
	var factors []string

	add := func(points float64, factor string) {
		score += points
		factors = append(factors, factor)
	}

	if rec.Feature(models.FeaturePeriod) > 0 {
		add(2, "orbital period")
	}
	if rec.Feature(models.FeatureDepth) > 0 {
		add(2, "transit depth")
	}
	if rec.Feature(models.FeaturePlanetRadius) > 0 {
		add(1.5, "planet radius")
	}
	if rec.Feature(models.FeatureModelSNR) > 0 {
		add(1.5, "signal to noise")
	}
	if impact := rec.Feature(models.FeatureImpact); impact >= 0 && impact <= 1 {
		add(1, "impact parameter")
	}
	if rec.Feature(models.FeatureDuration) > 0 {
		add(1, "transit duration")
	}
	if rec.Feature(models.FeatureEquilibriumTemp) > 0 {
		add(0.5, "equilibrium temperature")
	}
	if rec.Feature(models.FeatureInsolation) > 0 {
		add(0.5, "insolation flux")
	}
	for _, flag := range []string{
		models.FeatureFlagNotTransit,
		models.FeatureFlagStellarEclipse,
		models.FeatureFlagCentroidOffset,
		models.FeatureFlagEphemerisMatch,
	} {
		if rec.Feature(flag) < 0 {
			add(0.5, "clear "+flag)
		}
	}

	rec.RawScore = score
	rec.Factors = factors

	return Assessment{
		IsExoplanet: score >= labelThreshold,
		Score:       score,
		Confidence:  confidenceFor(rec, score),
		Factors:     factors,
	}
}

// Predict maps an assessment into the shared prediction representation. For
// the heuristic path the exoplanet probability mirrors the confidence of a
// positive call.
func (h *Heuristic) Predict(rec *models.Record) models.Prediction {
	a := h.Classify(rec)
	exoProb := a.Confidence
	if !a.IsExoplanet {
		exoProb = 1 - a.Confidence
	}
	return models.Prediction{
		Row:                      rec.Row,
		IsExoplanet:              a.IsExoplanet,
		Confidence:               a.Confidence,
		ExoplanetProbability:     exoProb,
		FalsePositiveProbability: 1 - exoProb,
		Record:                   rec,
	}
}

// confidenceFor converts a raw score into a bounded confidence. The floor and
// ceiling are intentional: the heuristic never reports below 50% or at 99%
// certainty.
func confidenceFor(rec *models.Record, score float64) float64 {
	confidence := score / maxScore
	if confidence > 1 {
		confidence = 1
	}

	if rec.Feature(models.FeatureModelSNR) > 0.5 {
		confidence += 0.1
	}
	if rec.Feature(models.FeatureDepth) > 0.1 {
		confidence += 0.1
	}
	if rec.Feature(models.FeaturePeriod) > 0.1 {
		confidence += 0.1
	}
	if rec.Feature(models.FeatureFlagNotTransit) > 0 {
		confidence -= 0.1
	}
	if rec.Feature(models.FeatureFlagStellarEclipse) > 0 {
		confidence -= 0.1
	}

	return clamp(confidence, confidenceFloor, confidenceCeiling)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
