package features

import "underwriting-workers/internal/models"

// Land records, crop data, seasonal income series and community references are not
// wired to any source yet. Each returns NeutralScore until one is.

func LandOwnership(models.Applicant, models.LoanApplication) float64 { return NeutralScore }

func CropPatterns(models.Applicant, models.LoanApplication) float64 { return NeutralScore }

func SeasonalIncome(models.Applicant, models.AlternativeData) float64 { return NeutralScore }

func CommunityStanding(models.Applicant, models.AlternativeData) float64 { return NeutralScore }

// Rural computes the rural factor group.
func Rural(applicant models.Applicant, app models.LoanApplication, data models.AlternativeData) models.RuralFactors {
	return models.RuralFactors{
		LandOwnership:     LandOwnership(applicant, app),
		CropPatterns:      CropPatterns(applicant, app),
		SeasonalIncome:    SeasonalIncome(applicant, data),
		CommunityStanding: CommunityStanding(applicant, data),
	}
}
