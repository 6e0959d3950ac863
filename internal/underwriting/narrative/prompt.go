package narrative

import (
	"fmt"
	"strings"

	"underwriting-workers/internal/models"
)

const systemPrompt = "You are an expert loan underwriter specializing in rural and semi-urban markets in India. " +
	"Provide detailed, fair, and culturally sensitive loan assessments. Respond with JSON only."

// Input is everything the narrative reviewer sees about one application.
type Input struct {
	Application models.LoanApplication
	Applicant   models.Applicant
	Documents   models.DocumentAnalysis
	Prediction  models.MLPrediction
}

func buildMessages(in Input) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(in)},
	}
}

func buildPrompt(in Input) string {
	var parts []string

	parts = append(parts, "Analyze this loan application for a borrower in rural/semi-urban India:")

	parts = append(parts, "\nBorrower Profile:")
	parts = append(parts, fmt.Sprintf("- Occupation: %s", orUnknown(string(in.Applicant.Occupation))))
	parts = append(parts, fmt.Sprintf("- Monthly Income: ₹%.0f", in.Applicant.MonthlyIncome))
	if in.Applicant.Age > 0 {
		parts = append(parts, fmt.Sprintf("- Age: %d", in.Applicant.Age))
	}
	if in.Applicant.FamilyMembers > 0 {
		parts = append(parts, fmt.Sprintf("- Family Members: %d", in.Applicant.FamilyMembers))
	}
	if loc := location(in.Applicant.Address); loc != "" {
		parts = append(parts, fmt.Sprintf("- Location: %s", loc))
	}

	parts = append(parts, "\nLoan Request:")
	parts = append(parts, fmt.Sprintf("- Amount: ₹%.0f", in.Application.RequestedAmount))
	parts = append(parts, fmt.Sprintf("- Purpose: %s", orUnknown(in.Application.Purpose)))
	parts = append(parts, fmt.Sprintf("- Duration: %d months", in.Application.DurationMonths))

	parts = append(parts, "\nDocument Analysis:")
	parts = append(parts, fmt.Sprintf("- Authenticity Score: %.2f", in.Documents.Authenticity))
	parts = append(parts, fmt.Sprintf("- Quality Score: %.2f", in.Documents.Quality))
	if len(in.Documents.FraudFlags) > 0 {
		parts = append(parts, fmt.Sprintf("- Fraud Flags: %s", strings.Join(in.Documents.FraudFlags, ", ")))
	} else {
		parts = append(parts, "- Fraud Flags: None")
	}

	parts = append(parts, "\nML Risk Assessment:")
	parts = append(parts, fmt.Sprintf("- Risk Score: %.2f", in.Prediction.RiskScore))
	parts = append(parts, fmt.Sprintf("- Default Probability: %.2f", in.Prediction.DefaultProbability))
	parts = append(parts, fmt.Sprintf("- Confidence: %.2f", in.Prediction.Confidence))

	parts = append(parts, "\nProvide:")
	parts = append(parts, "1. Overall assessment reasoning")
	parts = append(parts, "2. Key strengths of the application")
	parts = append(parts, "3. Main concerns or risk factors")
	parts = append(parts, "4. Specific recommendations")
	parts = append(parts, "5. Risk factors to monitor")

	parts = append(parts, "\nConsider local economic conditions, seasonal income patterns, family support systems, and community ties.")
	parts = append(parts, `Format the response as JSON: {"reasoning": string, "strengths": [string], "concerns": [string], "recommendations": [string], "riskFactors": [string]}`)

	return strings.Join(parts, "\n")
}

func location(a models.Address) string {
	var out []string
	for _, s := range []string{a.Village, a.District, a.State} {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
