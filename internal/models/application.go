// internal/models/application.go
package models

// ApplicationStatus tracks a loan application through the workflow.
type ApplicationStatus string

const (
	ApplicationDraft       ApplicationStatus = "draft"
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationApproved    ApplicationStatus = "approved"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// LoanApplication is the loan request being assessed. Amounts are in rupees.
type LoanApplication struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId,omitempty"`
	RequestedAmount float64           `json:"requestedAmount"`
	Purpose         string            `json:"purpose"`
	DurationMonths  int               `json:"duration"`
	Status          ApplicationStatus `json:"status,omitempty"`
}
