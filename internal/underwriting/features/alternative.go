package features

import (
	"underwriting-workers/internal/models"
)

// MobileReliability rewards steady call volume, data usage, regular top-ups and coverage.
func MobileReliability(p models.MobileUsagePatterns) float64 {
	score := 0.0

	if p.CallDuration > 100 {
		score += 0.3
	} else if p.CallDuration > 50 {
		score += 0.2
	}

	if p.DataUsage > 1000 {
		score += 0.3
	} else if p.DataUsage > 500 {
		score += 0.2
	}

	if p.TopUpFrequency > 0.8 {
		score += 0.2
	} else if p.TopUpFrequency > 0.5 {
		score += 0.1
	}

	score += p.NetworkReliability * 0.2
	return clamp01(score)
}

// UtilityPayments is the on-time share across all utilities, or neutral with no history.
func UtilityPayments(payments map[string]models.PaymentRecord) float64 {
	onTime, total := 0, 0
	for _, p := range payments {
		onTime += p.OnTime
		total += p.Total
	}
	if total <= 0 {
		return NeutralScore
	}
	return clamp01(float64(onTime) / float64(total))
}

// SocialStability: household size in [2,6] plus community and reference quality.
func SocialStability(c models.SocialConnections) float64 {
	score := 0.0
	if c.FamilySize >= 2 && c.FamilySize <= 6 {
		score += 0.4
	}
	score += c.CommunityInvolvement * 0.3
	score += c.ReferenceQuality * 0.3
	return clamp01(score)
}

// BehavioralPatterns: response time in hours and application completion rate.
func BehavioralPatterns(b models.BehavioralData) float64 {
	score := 0.0
	if b.ResponseTime < 24 {
		score += 0.4
	} else if b.ResponseTime < 72 {
		score += 0.2
	}
	score += b.CompletionRate * 0.6
	return clamp01(score)
}

// Alternative computes the alternative-data factor group.
func Alternative(data models.AlternativeData) models.AlternativeFactors {
	return models.AlternativeFactors{
		MobileReliability:  MobileReliability(data.MobileUsage),
		UtilityPayments:    UtilityPayments(data.UtilityPayments),
		SocialStability:    SocialStability(data.SocialConnections),
		BehavioralPatterns: BehavioralPatterns(data.BehavioralData),
	}
}
