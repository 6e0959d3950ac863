package decision

import (
	"math"

	"github.com/shopspring/decimal"

	"underwriting-workers/internal/models"
)

// Terms are the loan terms offered for a category.
type Terms struct {
	RecommendedAmount float64 `json:"recommendedAmount"`
	InterestRate      float64 `json:"interestRate"`
	MonthlyPayment    float64 `json:"monthlyPayment"`
}

var twelve = decimal.NewFromInt(12)

// LoanTerms caps the requested amount by category and prices it. Amounts are
// rounded to paise.
func LoanTerms(c models.RiskCategory, requestedAmount float64, durationMonths int) Terms {
	p := policyFor(c)
	if math.IsNaN(requestedAmount) || math.IsInf(requestedAmount, 0) || requestedAmount < 0 {
		requestedAmount = 0
	}

	amount := decimal.NewFromFloat(requestedAmount).Mul(decimal.NewFromFloat(p.amountCap)).Round(2)
	payment := MonthlyPayment(amount, decimal.NewFromFloat(p.interestRate), durationMonths)

	return Terms{
		RecommendedAmount: amount.InexactFloat64(),
		InterestRate:      p.interestRate,
		MonthlyPayment:    payment.InexactFloat64(),
	}
}

// MonthlyPayment is the level instalment P*i*(1+i)^n / ((1+i)^n - 1) with i the
// monthly rate. Zero when the tenure is not positive.
func MonthlyPayment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || principal.Sign() <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(months))
	if annualRate.Sign() <= 0 {
		return principal.Div(n).Round(2)
	}

	i := annualRate.Div(twelve)
	growth := decimal.NewFromInt(1).Add(i).Pow(n)
	return principal.Mul(i).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
}
