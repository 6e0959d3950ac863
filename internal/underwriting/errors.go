package underwriting

import (
	"errors"
	"fmt"
	"math"

	"underwriting-workers/internal/models"
)

var (
	ErrInvalidInput     = errors.New("invalid underwriting input")
	ErrAssessmentFailed = errors.New("underwriting assessment failed")
)

// InputError names the request field that failed validation.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// AssessmentError is returned when a non-recoverable stage fails. Its message
// never includes the cause; use errors.Unwrap or errors.Is to inspect it.
type AssessmentError struct {
	Stage string
	cause error
}

func (e *AssessmentError) Error() string { return ErrAssessmentFailed.Error() }

func (e *AssessmentError) Is(target error) bool { return target == ErrAssessmentFailed }

func (e *AssessmentError) Unwrap() error { return e.cause }

// Normalize validates a request and returns a copy with document types in
// canonical form and occupation aliases resolved.
func Normalize(req Request) (Request, error) {
	app := req.Application
	if !finite(app.RequestedAmount) || app.RequestedAmount <= 0 {
		return req, &InputError{Field: "application.requestedAmount", Reason: "must be a positive amount"}
	}
	if app.DurationMonths <= 0 {
		return req, &InputError{Field: "application.duration", Reason: "must be a positive number of months"}
	}
	if !finite(req.Applicant.MonthlyIncome) || req.Applicant.MonthlyIncome < 0 {
		return req, &InputError{Field: "applicant.monthlyIncome", Reason: "must be zero or positive"}
	}
	if len(req.Documents) == 0 {
		return req, &InputError{Field: "documents", Reason: "at least one document is required"}
	}

	docs := make([]models.Document, len(req.Documents))
	for i, d := range req.Documents {
		t, err := models.ParseDocumentType(string(d.Type))
		if err != nil {
			return req, &InputError{Field: fmt.Sprintf("documents[%d].type", i), Reason: err.Error()}
		}
		d.Type = t
		docs[i] = d
	}
	req.Documents = docs
	req.Applicant.Occupation = req.Applicant.Occupation.Normalize()
	return req, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
