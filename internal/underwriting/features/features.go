// Package features turns applicant data into normalized factor scores in [0,1].
// Every assessor is a pure, total function.
package features

import (
	"math"

	"underwriting-workers/internal/models"
)

// NeutralScore is used wherever a signal is missing.
const NeutralScore = 0.5

// VectorSize is the length of the risk model input.
const VectorSize = 14

// Vector lays the factors and document signals out in the fixed model input order:
// income, employment, creditHistory, debtToIncome, mobileReliability, utilityPayments,
// socialStability, behavioralPatterns, landOwnership, cropPatterns, seasonalIncome,
// communityStanding, documentAuthenticity, documentQuality.
func Vector(f models.CreditScoreFactors, docs models.DocumentAnalysis) []float64 {
	v := make([]float64, 0, VectorSize)
	v = append(v, f.Traditional.Values()...)
	v = append(v, f.Alternative.Values()...)
	v = append(v, f.Rural.Values()...)
	return append(v, docs.Authenticity, docs.Quality)
}

// Mean of a factor group. Empty groups are neutral.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return NeutralScore
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
