// internal/models/alternative_data.go
package models

// AlternativeData holds the non-traditional signals used for thin-file applicants.
type AlternativeData struct {
	MobileUsage       MobileUsagePatterns      `json:"mobileUsagePatterns"`
	UtilityPayments   map[string]PaymentRecord `json:"utilityPayments"`
	SocialConnections SocialConnections        `json:"socialConnections"`
	BehavioralData    BehavioralData           `json:"behavioralData"`
}

// MobileUsagePatterns: call duration in minutes/month, data usage in MB/month,
// top-up frequency and network reliability in [0,1].
type MobileUsagePatterns struct {
	CallDuration       float64 `json:"callDuration"`
	DataUsage          float64 `json:"dataUsage"`
	TopUpFrequency     float64 `json:"topUpFrequency"`
	NetworkReliability float64 `json:"networkReliability"`
}

// PaymentRecord counts on-time bills against all bills for one utility.
type PaymentRecord struct {
	OnTime int `json:"onTime"`
	Total  int `json:"total"`
}

type SocialConnections struct {
	FamilySize           int     `json:"familySize"`
	CommunityInvolvement float64 `json:"communityInvolvement"`
	ReferenceQuality     float64 `json:"referenceQuality"`
}

// BehavioralData: ResponseTime is in hours.
type BehavioralData struct {
	ResponseTime   float64 `json:"responseTime"`
	CompletionRate float64 `json:"completionRate"`
}
