// internal/workers/underwriting/calculate-credit-score/handler.go
package calculatecreditscore

import (
	"context"
	"encoding/json"
	"math"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"underwriting-workers/internal/common/camunda"
	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/decision"
	"underwriting-workers/internal/underwriting/features"
	"underwriting-workers/internal/underwriting/riskmodel"
)

const (
	TaskType = "calculate-credit-score"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	factors := models.CreditScoreFactors{
		Traditional: features.Traditional(input.Application, input.Applicant),
		Alternative: features.Alternative(input.AlternativeData),
		Rural:       features.Rural(input.Applicant, input.Application, input.AlternativeData),
	}

	// The blend is the same one used when the risk model is unavailable.
	overall := riskmodel.Fallback(factors).RiskScore

	output := &Output{
		Factors: factors,
		GroupScores: GroupScores{
			Traditional: features.Mean(factors.Traditional.Values()),
			Alternative: features.Mean(factors.Alternative.Values()),
			Rural:       features.Mean(factors.Rural.Values()),
		},
		OverallScore: overall,
		CreditScore:  decision.CreditScore(overall),
		RiskCategory: decision.Category(overall),
	}

	h.logger.Info("credit score calculated", map[string]interface{}{
		"applicationId": input.Application.ID,
		"creditScore":   output.CreditScore,
		"riskCategory":  output.RiskCategory,
	})
	return output, nil
}

func validateInput(input *Input) error {
	amount := input.Application.RequestedAmount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return apperrors.NewInvalidInputError("application.requestedAmount must be a positive amount", nil)
	}
	income := input.Applicant.MonthlyIncome
	if math.IsNaN(income) || math.IsInf(income, 0) || income < 0 {
		return apperrors.NewInvalidInputError("applicant.monthlyIncome must be zero or positive", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
