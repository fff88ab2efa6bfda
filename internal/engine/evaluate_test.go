package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitstack/exosift/internal/models"
)

func labelled(truth string, predicted bool) models.Prediction {
	rec := &models.Record{TruthField: "koi_disposition", TruthValue: truth}
	return models.Prediction{IsExoplanet: predicted, Record: rec}
}

func TestEvaluateConfusionMatrix(t *testing.T) {
	predictions := []models.Prediction{
		labelled("1", true),  // TP
		labelled("1", true),  // TP
		labelled("0", false), // TN
		labelled("1", false), // FN
		labelled("0", true),  // FP
	}

	m := Evaluate(predictions, nil)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Confusion.TruePositive)
	assert.Equal(t, 1, m.Confusion.TrueNegative)
	assert.Equal(t, 1, m.Confusion.FalsePositive)
	assert.Equal(t, 1, m.Confusion.FalseNegative)
	assert.Equal(t, 5, m.Total)

	assert.InDelta(t, 3.0/5.0, m.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.F1Score, 1e-9)
}

func TestEvaluateZeroPredictedPositives(t *testing.T) {
	predictions := []models.Prediction{
		labelled("1", false),
		labelled("0", false),
	}

	m := Evaluate(predictions, nil)
	require.NotNil(t, m)
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall) // TP is 0 here too
	assert.Zero(t, m.F1Score)
}

func TestEvaluateZeroActualPositives(t *testing.T) {
	predictions := []models.Prediction{
		labelled("0", true),
		labelled("0", false),
	}

	m := Evaluate(predictions, nil)
	require.NotNil(t, m)
	assert.Zero(t, m.Recall)
	assert.Equal(t, 2, m.Confusion.Total())
}

func TestEvaluateExcludesUnresolvableGroundTruth(t *testing.T) {
	predictions := []models.Prediction{
		labelled("1", true),
		labelled("CONFIRMED", true), // unparseable, excluded
		labelled("2", false),        // out of {0,1}, excluded
		{IsExoplanet: true, Record: &models.Record{}}, // no label column
	}

	m := Evaluate(predictions, nil)
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Confusion.Total())
	assert.Equal(t, 1, m.Total)
}

func TestEvaluateNilWithoutGroundTruth(t *testing.T) {
	predictions := []models.Prediction{
		{IsExoplanet: true, Record: &models.Record{}},
		{IsExoplanet: false, Record: &models.Record{}},
	}
	assert.Nil(t, Evaluate(predictions, nil))
	assert.Nil(t, Evaluate(nil, nil))
}

func TestResolveGroundTruth(t *testing.T) {
	for _, alias := range models.GroundTruthAliases {
		rec := &models.Record{TruthField: alias, TruthValue: " 1 "}
		v, ok := ResolveGroundTruth(rec)
		require.True(t, ok, "alias %s", alias)
		assert.Equal(t, 1, v)
	}

	_, ok := ResolveGroundTruth(&models.Record{TruthField: "something_else", TruthValue: "1"})
	assert.False(t, ok)

	_, ok = ResolveGroundTruth(nil)
	assert.False(t, ok)
}
