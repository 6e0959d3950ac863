// internal/workers/underwriting/calculate-credit-score/models.go
package calculatecreditscore

import "underwriting-workers/internal/models"

type Input struct {
	Applicant       models.Applicant       `json:"applicant"`
	Application     models.LoanApplication `json:"application"`
	AlternativeData models.AlternativeData `json:"alternativeData"`
}

type GroupScores struct {
	Traditional float64 `json:"traditional"`
	Alternative float64 `json:"alternative"`
	Rural       float64 `json:"rural"`
}

type Output struct {
	Factors      models.CreditScoreFactors `json:"factors"`
	GroupScores  GroupScores               `json:"groupScores"`
	OverallScore float64                   `json:"overallScore"` // 0..1
	CreditScore  int                       `json:"creditScore"`  // 0..850
	RiskCategory models.RiskCategory       `json:"riskCategory"` // preliminary, before ML and narrative review
}
