// internal/workers/underwriting/ai-underwriting/models.go
package aiunderwriting

import (
	"context"
	"time"

	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting"
	"underwriting-workers/internal/underwriting/store"
)

type Input struct {
	ApplicationID   string                 `json:"applicationId"`
	Application     models.LoanApplication `json:"application"`
	Applicant       models.Applicant       `json:"applicant"`
	Documents       []models.Document      `json:"documents"`
	AlternativeData models.AlternativeData `json:"alternativeData"`
}

// request resolves the application ID from either the process variable or
// the application payload.
func (in *Input) request() underwriting.Request {
	app := in.Application
	if app.ID == "" {
		app.ID = in.ApplicationID
	}
	return underwriting.Request{
		Application:     app,
		Applicant:       in.Applicant,
		Documents:       in.Documents,
		AlternativeData: in.AlternativeData,
	}
}

type Output struct {
	AssessmentID string                `json:"assessmentId"`
	Assessment   models.RiskAssessment `json:"assessment"`
	AssessedAt   string                `json:"assessedAt"` // RFC3339
	Cached       bool                  `json:"cached"`

	// Flattened for gateway conditions.
	RiskCategory models.RiskCategory `json:"riskCategory"`
	Decision     models.Decision     `json:"decision"`
}

func outputFrom(rec *store.Record, cached bool) *Output {
	return &Output{
		AssessmentID: rec.AssessmentID,
		Assessment:   rec.Assessment,
		AssessedAt:   rec.AssessedAt.UTC().Format(time.RFC3339),
		Cached:       cached,
		RiskCategory: rec.Assessment.RiskCategory,
		Decision:     rec.Assessment.Decision,
	}
}

// Assessor runs the underwriting pipeline. *underwriting.Service satisfies it.
type Assessor interface {
	Assess(ctx context.Context, req underwriting.Request) (*models.RiskAssessment, error)
}

// Repository persists assessments. Save returns the stored record, which is an
// earlier assessment when the same input was already saved.
type Repository interface {
	Save(ctx context.Context, rec store.Record) (*store.Record, error)
	FindByInput(ctx context.Context, applicationID, inputHash string) (*store.Record, error)
}

type Cache interface {
	Get(ctx context.Context, applicationID, inputHash string) (*store.Record, error)
	Set(ctx context.Context, rec store.Record) error
}

type Indexer interface {
	Index(ctx context.Context, rec store.Record) error
}

type Events interface {
	PublishCompleted(ctx context.Context, rec store.Record) error
}

// ScoreRecorder is satisfied by *observability.Observability.
type ScoreRecorder interface {
	RecordCreditScore(ctx context.Context, score int, riskCategory string)
}

// Dependencies wires the handler. Only Assessor is required; the rest are
// skipped when nil.
type Dependencies struct {
	Assessor   Assessor
	Repository Repository
	Cache      Cache
	Indexer    Indexer
	Events     Events
	Scores     ScoreRecorder
}
