// internal/workers/underwriting/notify-decision/templates.go
package notifydecision

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"underwriting-workers/internal/models"
)

var templates = map[models.Decision]string{
	models.DecisionApproved: "Congratulations! Your loan application {{applicationId}} is approved for Rs {{recommendedAmount}} " +
		"at {{interestRate}}% p.a. Monthly payment: Rs {{monthlyPayment}}.",
	models.DecisionManualReview: "Your loan application {{applicationId}} is under review. " +
		"Our field officer will contact you shortly.",
	models.DecisionRejected: "We are unable to approve loan application {{applicationId}} at this time. " +
		"You may reapply with additional documents.",
}

func templateData(input *Input) map[string]interface{} {
	data := map[string]interface{}{
		"applicationId": input.ApplicationID,
		"riskCategory":  string(input.RiskCategory),
	}
	if input.RecommendedAmount > 0 {
		data["recommendedAmount"] = decimal.NewFromFloat(input.RecommendedAmount).StringFixed(2)
	}
	if input.InterestRate > 0 {
		data["interestRate"] = decimal.NewFromFloat(input.InterestRate).Shift(2).Round(2).String()
	}
	if input.MonthlyPayment > 0 {
		data["monthlyPayment"] = decimal.NewFromFloat(input.MonthlyPayment).StringFixed(2)
	}
	return data
}

// renderTemplate replaces {{key}} placeholders and drops any left without a value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
