// Package decision merges the model and narrative outputs into a credit decision.
package decision

import (
	"fmt"
	"math"
	"strings"

	"underwriting-workers/internal/models"
)

const (
	modelWeight     = 0.7
	narrativeWeight = 0.3

	// MaxCreditScore mirrors the familiar bureau range.
	MaxCreditScore = 850

	narrativeBase = 0.5
	narrativeStep = 0.1
)

type categoryPolicy struct {
	approvalProbability float64
	amountCap           float64
	interestRate        float64
	decision            models.Decision
}

var policies = map[models.RiskCategory]categoryPolicy{
	models.RiskLow:      {approvalProbability: 0.9, amountCap: 1.0, interestRate: 0.12, decision: models.DecisionApproved},
	models.RiskMedium:   {approvalProbability: 0.7, amountCap: 0.8, interestRate: 0.15, decision: models.DecisionApproved},
	models.RiskHigh:     {approvalProbability: 0.4, amountCap: 0.6, interestRate: 0.18, decision: models.DecisionManualReview},
	models.RiskVeryHigh: {approvalProbability: 0.1, amountCap: 0.4, interestRate: 0.22, decision: models.DecisionRejected},
}

// unknownPolicy applies to any category outside the table.
var unknownPolicy = categoryPolicy{approvalProbability: 0.1, amountCap: 0.4, interestRate: 0.22, decision: models.DecisionRejected}

func policyFor(c models.RiskCategory) categoryPolicy {
	if p, ok := policies[c]; ok {
		return p
	}
	return unknownPolicy
}

// NarrativeScore converts a review into a score: 0.5 plus 0.1 per strength minus
// 0.1 per concern, clamped to [0,1].
func NarrativeScore(n models.NarrativeAnalysis) float64 {
	s := narrativeBase + narrativeStep*float64(len(n.Strengths)) - narrativeStep*float64(len(n.Concerns))
	return clamp01(s)
}

// CombinedScore blends the model score 0.7 and the narrative score 0.3.
func CombinedScore(riskScore, narrativeScore float64) float64 {
	return clamp01(riskScore*modelWeight + narrativeScore*narrativeWeight)
}

// Category maps a combined score to a risk category. Lower bounds are inclusive.
func Category(score float64) models.RiskCategory {
	switch {
	case score >= 0.8:
		return models.RiskLow
	case score >= 0.6:
		return models.RiskMedium
	case score >= 0.4:
		return models.RiskHigh
	default:
		return models.RiskVeryHigh
	}
}

func ApprovalProbability(c models.RiskCategory) float64 {
	return policyFor(c).approvalProbability
}

func DecisionFor(c models.RiskCategory) models.Decision {
	return policyFor(c).decision
}

// CreditScore scales a combined score onto 0..850.
func CreditScore(combined float64) int {
	return int(math.Round(clamp01(combined) * MaxCreditScore))
}

// Reasoning prefers the narrative text and otherwise cites the category and score.
func Reasoning(n models.NarrativeAnalysis, c models.RiskCategory, combined float64) string {
	if r := strings.TrimSpace(n.Reasoning); r != "" {
		return r
	}
	return fmt.Sprintf("Based on our comprehensive assessment, this application has been categorized as %s risk with a score of %.1f%%.", c, combined*100)
}

// Combine produces the final assessment from the stage outputs.
func Combine(app models.LoanApplication, factors models.CreditScoreFactors, pred models.MLPrediction, n models.NarrativeAnalysis) models.RiskAssessment {
	combined := CombinedScore(pred.RiskScore, NarrativeScore(n))
	category := Category(combined)
	terms := LoanTerms(category, app.RequestedAmount, app.DurationMonths)

	return models.RiskAssessment{
		CreditScore:         CreditScore(combined),
		RiskCategory:        category,
		ApprovalProbability: ApprovalProbability(category),
		RecommendedAmount:   terms.RecommendedAmount,
		InterestRate:        terms.InterestRate,
		MonthlyPayment:      terms.MonthlyPayment,
		Decision:            DecisionFor(category),
		Confidence:          pred.Confidence,
		Reasoning:           Reasoning(n, category, combined),
		Factors:             factors,
		Flags:               copyOrEmpty(n.Concerns),
		Recommendations:     copyOrEmpty(n.Recommendations),
		PredictionSource:    pred.Source,
		NarrativeSource:     n.Source,
	}
}

func copyOrEmpty(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
