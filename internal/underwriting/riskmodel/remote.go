package riskmodel

import (
	"context"
	"fmt"
	"strings"
	"time"

	commonhttp "underwriting-workers/internal/common/http"
	"underwriting-workers/internal/models"
)

type assessRiskRequest struct {
	ApplicationID string    `json:"applicationId,omitempty"`
	Features      []float64 `json:"features"`
}

type assessRiskResponse struct {
	RiskScore         *float64                  `json:"riskScore"`
	Confidence        *float64                  `json:"confidence"`
	FeatureImportance *models.FeatureImportance `json:"featureImportance,omitempty"`
}

// RemoteModel calls the AI services scoring endpoint (POST /assess-risk).
type RemoteModel struct {
	baseURL string
	client  *commonhttp.Client
}

func NewRemoteModel(baseURL string, timeout time.Duration) *RemoteModel {
	return &RemoteModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  commonhttp.NewClient(timeout),
	}
}

// Predict ignores any defaultProbability sent by the service and derives it from riskScore.
func (m *RemoteModel) Predict(ctx context.Context, vector []float64) (models.MLPrediction, error) {
	if err := ValidateVector(vector); err != nil {
		return models.MLPrediction{}, err
	}

	req := assessRiskRequest{
		ApplicationID: applicationIDFrom(ctx),
		Features:      vector,
	}
	var resp assessRiskResponse
	if err := m.client.PostJSON(ctx, m.baseURL+"/assess-risk", nil, req, &resp); err != nil {
		return models.MLPrediction{}, fmt.Errorf("assess-risk: %w", err)
	}
	if resp.RiskScore == nil || resp.Confidence == nil {
		return models.MLPrediction{}, fmt.Errorf("%w: missing riskScore or confidence", ErrModelOutOfRange)
	}

	importance := GroupImportance
	if resp.FeatureImportance != nil {
		importance = *resp.FeatureImportance
	}
	return newPrediction(*resp.RiskScore, *resp.Confidence, importance, models.PredictionFromModel)
}

type applicationIDKey struct{}

// WithApplicationID tags outgoing model calls with the application under assessment.
func WithApplicationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, applicationIDKey{}, id)
}

func applicationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(applicationIDKey{}).(string)
	return id
}
