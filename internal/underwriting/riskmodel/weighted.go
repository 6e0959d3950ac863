package riskmodel

import (
	"context"

	"underwriting-workers/internal/models"
)

// DefaultWeights spreads 0.4 over the traditional factors, 0.4 over the alternative
// factors, 0.1 over the rural factors and 0.1 over the two document signals.
var DefaultWeights = []float64{
	0.10, 0.10, 0.10, 0.10,
	0.10, 0.10, 0.10, 0.10,
	0.025, 0.025, 0.025, 0.025,
	0.05, 0.05,
}

const weightedConfidence = 0.85

// WeightedModel is a deterministic linear scorer used when no trained model is deployed.
type WeightedModel struct {
	weights []float64
}

func NewWeightedModel() *WeightedModel {
	return &WeightedModel{weights: DefaultWeights}
}

func (m *WeightedModel) Predict(ctx context.Context, vector []float64) (models.MLPrediction, error) {
	if err := ctx.Err(); err != nil {
		return models.MLPrediction{}, err
	}
	if err := ValidateVector(vector); err != nil {
		return models.MLPrediction{}, err
	}

	score := 0.0
	for i, x := range vector {
		score += m.weights[i] * x
	}
	if score > 1 {
		score = 1
	}
	return newPrediction(score, weightedConfidence, GroupImportance, models.PredictionFromModel)
}
