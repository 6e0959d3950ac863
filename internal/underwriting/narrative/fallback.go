package narrative

import (
	"errors"

	"underwriting-workers/internal/models"
)

var ErrMalformedResponse = errors.New("malformed narrative response")

// strongThreshold is the risk score above which the fallback calls creditworthiness strong.
const strongThreshold = 0.7

// Fallback is the deterministic narrative used whenever generation fails.
func Fallback(pred models.MLPrediction) models.NarrativeAnalysis {
	strength := "moderate"
	if pred.RiskScore > strongThreshold {
		strength = "strong"
	}
	return models.NarrativeAnalysis{
		Reasoning:       "Based on the available data, this application shows " + strength + " creditworthiness.",
		Strengths:       []string{"Regular income", "Stable occupation"},
		Concerns:        []string{"Limited credit history"},
		Recommendations: []string{"Consider lower loan amount", "Monitor repayment closely"},
		RiskFactors:     []string{"Income volatility", "Seasonal employment"},
		Source:          models.NarrativeFromFallback,
	}
}
