// Package riskmodel defines the risk model contract and its implementations.
package riskmodel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/features"
)

var (
	ErrInvalidVector   = errors.New("invalid feature vector")
	ErrModelOutOfRange = errors.New("model output out of range")
)

// Model predicts credit risk from the fixed-order feature vector.
// Implementations must return DefaultProbability == 1 - RiskScore.
type Model interface {
	Predict(ctx context.Context, vector []float64) (models.MLPrediction, error)
}

// GroupImportance is reported by every model path.
var GroupImportance = models.FeatureImportance{
	Traditional: 0.4,
	Alternative: 0.4,
	Rural:       0.2,
}

// ValidateVector checks length and that every slot is a finite value in [0,1].
func ValidateVector(v []float64) error {
	if len(v) != features.VectorSize {
		return fmt.Errorf("%w: want %d values, got %d", ErrInvalidVector, features.VectorSize, len(v))
	}
	for i, x := range v {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return fmt.Errorf("%w: slot %d = %v", ErrInvalidVector, i, x)
		}
	}
	return nil
}

func newPrediction(riskScore, confidence float64, importance models.FeatureImportance, source models.PredictionSource) (models.MLPrediction, error) {
	if math.IsNaN(riskScore) || riskScore < 0 || riskScore > 1 {
		return models.MLPrediction{}, fmt.Errorf("%w: riskScore=%v", ErrModelOutOfRange, riskScore)
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return models.MLPrediction{}, fmt.Errorf("%w: confidence=%v", ErrModelOutOfRange, confidence)
	}
	return models.MLPrediction{
		RiskScore:          riskScore,
		DefaultProbability: 1 - riskScore,
		Confidence:         confidence,
		FeatureImportance:  importance,
		Source:             source,
	}, nil
}
