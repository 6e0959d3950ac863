// internal/underwriting/service.go
package underwriting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/decision"
	"underwriting-workers/internal/underwriting/features"
	"underwriting-workers/internal/underwriting/narrative"
	"underwriting-workers/internal/underwriting/riskmodel"
)

// Stage names used in logs and metrics.
const (
	StageDocuments   = "document_analysis"
	StageTraditional = "traditional_score"
	StageAlternative = "alternative_score"
	StageRural       = "rural_score"
	StagePrediction  = "ml_prediction"
	StageNarrative   = "narrative_analysis"
	StageFinal       = "final_assessment"
)

const (
	defaultModelTimeout     = 5 * time.Second
	defaultNarrativeTimeout = 25 * time.Second
)

// DocumentAnalyzer scores a set of documents.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, docs []models.Document) (models.DocumentAnalysis, error)
}

// NarrativeGenerator produces the qualitative review of an application.
type NarrativeGenerator interface {
	Generate(ctx context.Context, in narrative.Input) (models.NarrativeAnalysis, error)
}

// Recorder receives pipeline measurements.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	RecordFallback(stage string)
	RecordAssessment(category models.RiskCategory, decision models.Decision)
	RecordFailure(reason string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveStage(string, time.Duration) {}
func (noopRecorder) RecordFallback(string) {}
func (noopRecorder) RecordAssessment(models.RiskCategory, models.Decision) {}
func (noopRecorder) RecordFailure(string) {}

// Request is everything a single assessment needs.
type Request struct {
	Application     models.LoanApplication `json:"application"`
	Applicant       models.Applicant       `json:"applicant"`
	Documents       []models.Document      `json:"documents"`
	AlternativeData models.AlternativeData `json:"alternativeData"`
}

// Service runs the underwriting pipeline. It holds no per-assessment state and
// is safe for concurrent use.
type Service struct {
	analyzer         DocumentAnalyzer
	model            riskmodel.Model
	narrator         NarrativeGenerator
	modelTimeout     time.Duration
	narrativeTimeout time.Duration
	recorder         Recorder
	logger           logger.Logger
}

type Option func(*Service)

func WithModelTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.modelTimeout = d
		}
	}
}

func WithNarrativeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.narrativeTimeout = d
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewService(analyzer DocumentAnalyzer, model riskmodel.Model, narrator NarrativeGenerator, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		analyzer:         analyzer,
		model:            model,
		narrator:         narrator,
		modelTimeout:     defaultModelTimeout,
		narrativeTimeout: defaultNarrativeTimeout,
		recorder:         noopRecorder{},
		logger:           log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess runs every stage in order and returns the final assessment. Model and
// narrative failures are replaced by their fallbacks; any other stage failure
// aborts with ErrAssessmentFailed. Invalid requests fail with ErrInvalidInput
// before any stage runs.
func (s *Service) Assess(ctx context.Context, req Request) (result *models.RiskAssessment, err error) {
	req, err = Normalize(req)
	if err != nil {
		s.recorder.RecordFailure("invalid_input")
		return nil, err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"applicationId": req.Application.ID,
	})

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, s.abort(log, "panic", fmt.Errorf("panic: %v", r))
		}
	}()

	log.Info("Starting underwriting assessment", map[string]interface{}{
		"requestedAmount": req.Application.RequestedAmount,
		"documents":       len(req.Documents),
	})

	start := time.Now()
	docs, err := s.analyzer.Analyze(ctx, req.Documents)
	s.recorder.ObserveStage(StageDocuments, time.Since(start))
	if err != nil {
		return nil, s.abort(log, StageDocuments, err)
	}

	factors := models.CreditScoreFactors{
		Traditional: timed(s.recorder, StageTraditional, func() models.TraditionalFactors {
			return features.Traditional(req.Application, req.Applicant)
		}),
		Alternative: timed(s.recorder, StageAlternative, func() models.AlternativeFactors {
			return features.Alternative(req.AlternativeData)
		}),
		Rural: timed(s.recorder, StageRural, func() models.RuralFactors {
			return features.Rural(req.Applicant, req.Application, req.AlternativeData)
		}),
	}

	pred := s.predict(ctx, log, req.Application.ID, factors, docs)
	if ctx.Err() != nil {
		return nil, s.abort(log, StagePrediction, ctx.Err())
	}

	narr := s.narrate(ctx, log, narrative.Input{
		Application: req.Application,
		Applicant:   req.Applicant,
		Documents:   docs,
		Prediction:  pred,
	})
	if ctx.Err() != nil {
		return nil, s.abort(log, StageNarrative, ctx.Err())
	}

	assessment := timed(s.recorder, StageFinal, func() models.RiskAssessment {
		return decision.Combine(req.Application, factors, pred, narr)
	})
	s.recorder.RecordAssessment(assessment.RiskCategory, assessment.Decision)

	log.Info("Underwriting assessment completed", map[string]interface{}{
		"creditScore":      assessment.CreditScore,
		"riskCategory":     assessment.RiskCategory,
		"decision":         assessment.Decision,
		"predictionSource": assessment.PredictionSource,
		"narrativeSource":  assessment.NarrativeSource,
		"duration":         time.Since(start).String(),
	})
	return &assessment, nil
}

// predict calls the risk model under its own deadline and substitutes the
// factor-based fallback on any failure.
func (s *Service) predict(ctx context.Context, log logger.Logger, applicationID string, factors models.CreditScoreFactors, docs models.DocumentAnalysis) models.MLPrediction {
	start := time.Now()
	defer func() { s.recorder.ObserveStage(StagePrediction, time.Since(start)) }()

	pred, err := s.callModel(ctx, applicationID, features.Vector(factors, docs))
	if err == nil {
		return pred
	}

	s.recorder.RecordFallback(StagePrediction)
	log.Warn("Risk model unavailable, using fallback prediction", map[string]interface{}{
		"stage": StagePrediction,
		"error": err,
	})
	return riskmodel.Fallback(factors)
}

func (s *Service) callModel(ctx context.Context, applicationID string, vector []float64) (pred models.MLPrediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("risk model panic: %v", r)
		}
	}()
	if s.model == nil {
		return models.MLPrediction{}, errors.New("no risk model configured")
	}

	ctx, cancel := context.WithTimeout(riskmodel.WithApplicationID(ctx, applicationID), s.modelTimeout)
	defer cancel()

	pred, err = s.model.Predict(ctx, vector)
	if err != nil {
		return models.MLPrediction{}, err
	}
	if err := validPrediction(pred); err != nil {
		return models.MLPrediction{}, err
	}
	pred.DefaultProbability = 1 - pred.RiskScore
	if pred.Source == "" {
		pred.Source = models.PredictionFromModel
	}
	return pred, nil
}

// narrate calls the narrative generator under its own deadline and substitutes
// the score-based fallback on any failure.
func (s *Service) narrate(ctx context.Context, log logger.Logger, in narrative.Input) models.NarrativeAnalysis {
	start := time.Now()
	defer func() { s.recorder.ObserveStage(StageNarrative, time.Since(start)) }()

	n, err := s.callNarrator(ctx, in)
	if err == nil {
		if n.Source == "" {
			n.Source = models.NarrativeFromLLM
		}
		return n
	}

	s.recorder.RecordFallback(StageNarrative)
	log.Warn("Narrative generation failed, using fallback analysis", map[string]interface{}{
		"stage": StageNarrative,
		"error": err,
	})
	return narrative.Fallback(in.Prediction)
}

func (s *Service) callNarrator(ctx context.Context, in narrative.Input) (n models.NarrativeAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("narrative generator panic: %v", r)
		}
	}()
	if s.narrator == nil {
		return models.NarrativeAnalysis{}, errors.New("no narrative generator configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
	defer cancel()
	return s.narrator.Generate(ctx, in)
}

func (s *Service) abort(log logger.Logger, stage string, cause error) error {
	s.recorder.RecordFailure(stage)
	log.Error("Underwriting assessment failed", map[string]interface{}{
		"stage": stage,
		"error": cause,
	})
	return &AssessmentError{Stage: stage, cause: cause}
}

func timed[T any](r Recorder, stage string, fn func() T) T {
	start := time.Now()
	v := fn()
	r.ObserveStage(stage, time.Since(start))
	return v
}

func validPrediction(p models.MLPrediction) error {
	if !(p.RiskScore >= 0 && p.RiskScore <= 1) {
		return fmt.Errorf("%w: riskScore %v", riskmodel.ErrModelOutOfRange, p.RiskScore)
	}
	if !(p.Confidence >= 0 && p.Confidence <= 1) {
		return fmt.Errorf("%w: confidence %v", riskmodel.ErrModelOutOfRange, p.Confidence)
	}
	return nil
}
