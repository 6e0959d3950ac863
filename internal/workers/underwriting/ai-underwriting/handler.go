// internal/workers/underwriting/ai-underwriting/handler.go
package aiunderwriting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"underwriting-workers/internal/common/camunda"
	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/common/metrics"
	"underwriting-workers/internal/underwriting"
	"underwriting-workers/internal/underwriting/store"
)

const (
	TaskType = "ai-underwriting"
)

type Handler struct {
	config       *Config
	deps         Dependencies
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		deps:         deps,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	raw := []byte(job.Variables)
	if err := ValidateInput(raw); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(err.Error(), err))
		return
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError("parse input", err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	req, err := underwriting.Normalize(input.request())
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error(), err)
	}

	applicationID := req.Application.ID
	log := h.logger.WithFields(map[string]interface{}{"applicationId": applicationID})

	hash, err := store.InputHash(req)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("unencodable input", err)
	}

	if rec := h.lookup(ctx, log, applicationID, hash); rec != nil {
		log.Info("returning stored assessment", map[string]interface{}{
			"assessmentId": rec.AssessmentID,
		})
		return outputFrom(rec, true), nil
	}

	assessment, err := h.deps.Assessor.Assess(ctx, req)
	if err != nil {
		return nil, classify(ctx, err)
	}

	rec := store.Record{
		AssessmentID:  uuid.NewString(),
		ApplicationID: applicationID,
		InputHash:     hash,
		Assessment:    *assessment,
		AssessedAt:    h.now().UTC().Truncate(time.Second),
	}

	if h.deps.Repository != nil {
		saved, err := h.deps.Repository.Save(ctx, rec)
		if err != nil {
			return nil, apperrors.NewDatabaseError("save assessment", err)
		}
		if saved.AssessmentID != rec.AssessmentID {
			log.Info("concurrent assessment already stored", map[string]interface{}{
				"assessmentId": saved.AssessmentID,
			})
			return outputFrom(saved, true), nil
		}
	}

	h.distribute(ctx, log, rec)

	if h.deps.Scores != nil {
		h.deps.Scores.RecordCreditScore(ctx, assessment.CreditScore, string(assessment.RiskCategory))
	}

	return outputFrom(&rec, false), nil
}

// lookup returns a previously stored assessment for the same input. Lookup
// errors are treated as misses.
func (h *Handler) lookup(ctx context.Context, log logger.Logger, applicationID, hash string) *store.Record {
	if h.deps.Cache != nil {
		rec, err := h.deps.Cache.Get(ctx, applicationID, hash)
		switch {
		case err == nil:
			metrics.RecordCacheLookup(true)
			return rec
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.RecordCacheLookup(false)
	}

	if h.deps.Repository == nil {
		return nil
	}
	rec, err := h.deps.Repository.FindByInput(ctx, applicationID, hash)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("assessment lookup failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	if h.deps.Cache != nil {
		if err := h.deps.Cache.Set(ctx, *rec); err != nil {
			log.Warn("cache refill failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return rec
}

// distribute runs the non-critical side effects of a new assessment.
func (h *Handler) distribute(ctx context.Context, log logger.Logger, rec store.Record) {
	if h.deps.Cache != nil {
		if err := h.deps.Cache.Set(ctx, rec); err != nil {
			log.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if h.deps.Indexer != nil {
		if err := h.deps.Indexer.Index(ctx, rec); err != nil {
			log.Warn("assessment indexing failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if h.deps.Events != nil {
		if err := h.deps.Events.PublishCompleted(ctx, rec); err != nil {
			log.Warn("assessment event not published", map[string]interface{}{"error": err.Error()})
		}
	}
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, underwriting.ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error(), err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewAssessmentTimeoutError(err)
	default:
		return apperrors.NewAssessmentFailedError(err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
