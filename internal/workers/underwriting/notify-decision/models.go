// internal/workers/underwriting/notify-decision/models.go
package notifydecision

import "underwriting-workers/internal/models"

type Input struct {
	ApplicationID     string              `json:"applicationId"`
	PhoneNumber       string              `json:"phoneNumber"`
	RiskCategory      models.RiskCategory `json:"riskCategory"`
	Decision          models.Decision     `json:"decision"`
	RecommendedAmount float64             `json:"recommendedAmount"`
	InterestRate      float64             `json:"interestRate"`
	MonthlyPayment    float64             `json:"monthlyPayment"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt,omitempty"` // ISO 8601, set only when sent
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
