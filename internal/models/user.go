// internal/models/user.go
package models

import (
	"encoding/json"
	"strings"
)

// Occupation is the applicant's declared occupation.
type Occupation string

const (
	OccupationFarmer       Occupation = "farmer"
	OccupationGovernment   Occupation = "government"
	OccupationPrivate      Occupation = "private"
	OccupationSelfEmployed Occupation = "self-employed"
	OccupationDailyWage    Occupation = "daily-wage"
	OccupationSeasonal     Occupation = "seasonal"
	OccupationOther        Occupation = "other"
)

// Normalize folds case and the camel-case spellings used by the mobile client
// ("selfEmployed", "dailyWage") onto the canonical hyphenated values.
func (o Occupation) Normalize() Occupation {
	s := strings.ToLower(strings.TrimSpace(string(o)))
	switch strings.NewReplacer("-", "", "_", "", " ", "").Replace(s) {
	case "selfemployed":
		return OccupationSelfEmployed
	case "dailywage":
		return OccupationDailyWage
	}
	return Occupation(s)
}

// Address is where the applicant lives.
type Address struct {
	Street   string `json:"street,omitempty"`
	Village  string `json:"village,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

// Applicant carries the profile fields used for feature derivation and the narrative prompt.
type Applicant struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	Email         string     `json:"email,omitempty"`
	Age           int        `json:"age,omitempty"`
	Address       Address    `json:"address"`
	Occupation    Occupation `json:"occupation"`
	MonthlyIncome float64    `json:"monthlyIncome"`
	FamilyMembers int        `json:"familyMembers,omitempty"`

	// EmploymentHistory is passed through untouched.
	EmploymentHistory json.RawMessage `json:"employmentHistory,omitempty"`
}
