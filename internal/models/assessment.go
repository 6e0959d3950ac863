// internal/models/assessment.go
package models

// RiskCategory buckets the combined score.
type RiskCategory string

const (
	RiskLow      RiskCategory = "LOW"
	RiskMedium   RiskCategory = "MEDIUM"
	RiskHigh     RiskCategory = "HIGH"
	RiskVeryHigh RiskCategory = "VERY_HIGH"
)

// Decision is the workflow routing outcome derived from the risk category.
type Decision string

const (
	DecisionApproved     Decision = "approved"
	DecisionManualReview Decision = "manual_review"
	DecisionRejected     Decision = "rejected"
)

// PredictionSource records which path produced an MLPrediction.
type PredictionSource string

const (
	PredictionFromModel    PredictionSource = "model"
	PredictionFromFallback PredictionSource = "fallback"
)

// NarrativeSource records which path produced a NarrativeAnalysis.
type NarrativeSource string

const (
	NarrativeFromLLM      NarrativeSource = "llm"
	NarrativeFromFallback NarrativeSource = "fallback"
)

// TraditionalFactors are bureau-style signals.
type TraditionalFactors struct {
	Income        float64 `json:"income"`
	Employment    float64 `json:"employment"`
	CreditHistory float64 `json:"creditHistory"`
	DebtToIncome  float64 `json:"debtToIncome"`
}

func (f TraditionalFactors) Values() []float64 {
	return []float64{f.Income, f.Employment, f.CreditHistory, f.DebtToIncome}
}

// AlternativeFactors are derived from AlternativeData.
type AlternativeFactors struct {
	MobileReliability  float64 `json:"mobileReliability"`
	UtilityPayments    float64 `json:"utilityPayments"`
	SocialStability    float64 `json:"socialStability"`
	BehavioralPatterns float64 `json:"behavioralPatterns"`
}

func (f AlternativeFactors) Values() []float64 {
	return []float64{f.MobileReliability, f.UtilityPayments, f.SocialStability, f.BehavioralPatterns}
}

// RuralFactors are agricultural and community signals.
type RuralFactors struct {
	LandOwnership     float64 `json:"landOwnership"`
	CropPatterns      float64 `json:"cropPatterns"`
	SeasonalIncome    float64 `json:"seasonalIncome"`
	CommunityStanding float64 `json:"communityStanding"`
}

func (f RuralFactors) Values() []float64 {
	return []float64{f.LandOwnership, f.CropPatterns, f.SeasonalIncome, f.CommunityStanding}
}

// CreditScoreFactors groups every factor score, each in [0,1].
type CreditScoreFactors struct {
	Traditional TraditionalFactors `json:"traditional"`
	Alternative AlternativeFactors `json:"alternative"`
	Rural       RuralFactors       `json:"rural"`
}

// DocumentAnalysis aggregates per-document inspection results.
type DocumentAnalysis struct {
	Authenticity float64  `json:"authenticity"`
	Quality      float64  `json:"quality"`
	FraudFlags   []string `json:"fraudFlags"`
}

// FeatureImportance weights per factor group.
type FeatureImportance struct {
	Traditional float64 `json:"traditional"`
	Alternative float64 `json:"alternative"`
	Rural       float64 `json:"rural"`
}

// MLPrediction is the risk model output. DefaultProbability is always 1 - RiskScore.
type MLPrediction struct {
	RiskScore          float64           `json:"riskScore"`
	DefaultProbability float64           `json:"defaultProbability"`
	Confidence         float64           `json:"confidence"`
	FeatureImportance  FeatureImportance `json:"featureImportance"`
	Source             PredictionSource  `json:"source"`
}

// NarrativeAnalysis is the qualitative review of an application.
type NarrativeAnalysis struct {
	Reasoning       string          `json:"reasoning"`
	Strengths       []string        `json:"strengths"`
	Concerns        []string        `json:"concerns"`
	Recommendations []string        `json:"recommendations"`
	RiskFactors     []string        `json:"riskFactors"`
	Source          NarrativeSource `json:"source"`
}

// RiskAssessment is the final underwriting result.
type RiskAssessment struct {
	CreditScore         int                `json:"creditScore"`
	RiskCategory        RiskCategory       `json:"riskCategory"`
	ApprovalProbability float64            `json:"approvalProbability"`
	RecommendedAmount   float64            `json:"recommendedAmount"`
	InterestRate        float64            `json:"interestRate"`
	MonthlyPayment      float64            `json:"monthlyPayment"`
	Decision            Decision           `json:"decision"`
	Confidence          float64            `json:"confidence"`
	Reasoning           string             `json:"reasoning"`
	Factors             CreditScoreFactors `json:"factors"`
	Flags               []string           `json:"flags"`
	Recommendations     []string           `json:"recommendations"`
	PredictionSource    PredictionSource   `json:"predictionSource"`
	NarrativeSource     NarrativeSource    `json:"narrativeSource"`
}
