package riskmodel

import (
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/features"
)

const fallbackConfidence = 0.7

// Fallback blends the factor group means 0.4/0.4/0.2. It never fails.
func Fallback(f models.CreditScoreFactors) models.MLPrediction {
	score := GroupImportance.Traditional*features.Mean(f.Traditional.Values()) +
		GroupImportance.Alternative*features.Mean(f.Alternative.Values()) +
		GroupImportance.Rural*features.Mean(f.Rural.Values())

	return models.MLPrediction{
		RiskScore:          score,
		DefaultProbability: 1 - score,
		Confidence:         fallbackConfidence,
		FeatureImportance:  GroupImportance,
		Source:             models.PredictionFromFallback,
	}
}
