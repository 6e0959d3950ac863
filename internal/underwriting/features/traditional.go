package features

import (
	"math"

	"underwriting-workers/internal/models"
)

// IncomeStability scores the requested amount against annual income.
func IncomeStability(requestedAmount, monthlyIncome float64) float64 {
	ratio := safeRatio(requestedAmount, monthlyIncome*12)
	switch {
	case ratio <= 0.3:
		return 0.9
	case ratio <= 0.5:
		return 0.7
	case ratio <= 0.8:
		return 0.5
	default:
		return 0.3
	}
}

// EmploymentStability is a lookup on occupation; unknown occupations score neutral.
func EmploymentStability(occupation models.Occupation) float64 {
	switch occupation.Normalize() {
	case models.OccupationGovernment, models.OccupationPrivate, models.OccupationSelfEmployed:
		return 0.8
	case models.OccupationDailyWage, models.OccupationSeasonal:
		return 0.4
	default:
		return 0.6
	}
}

// assumedPaymentRate approximates the monthly instalment as a share of principal.
const assumedPaymentRate = 0.02

// DebtToIncome scores the assumed monthly payment against monthly income.
func DebtToIncome(requestedAmount, monthlyIncome float64) float64 {
	ratio := safeRatio(requestedAmount*assumedPaymentRate, monthlyIncome)
	switch {
	case ratio <= 0.3:
		return 0.9
	case ratio <= 0.5:
		return 0.7
	case ratio <= 0.7:
		return 0.5
	default:
		return 0.3
	}
}

// CreditHistory has no bureau source yet.
func CreditHistory(models.Applicant) float64 {
	return NeutralScore
}

// safeRatio treats a non-positive denominator as an infinite ratio so that
// zero income lands in the lowest band instead of dividing by zero.
func safeRatio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) {
		return math.Inf(1)
	}
	return num / den
}

// Traditional computes the traditional factor group.
func Traditional(app models.LoanApplication, applicant models.Applicant) models.TraditionalFactors {
	return models.TraditionalFactors{
		Income:        IncomeStability(app.RequestedAmount, applicant.MonthlyIncome),
		Employment:    EmploymentStability(applicant.Occupation),
		CreditHistory: CreditHistory(applicant),
		DebtToIncome:  DebtToIncome(app.RequestedAmount, applicant.MonthlyIncome),
	}
}
