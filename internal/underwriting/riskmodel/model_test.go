package riskmodel

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriting-workers/internal/models"
)

func uniformVector(v float64) []float64 {
	out := make([]float64, 14)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestWeightedModel_Predict(t *testing.T) {
	m := NewWeightedModel()

	tests := []struct {
		name   string
		vector []float64
		want   float64
	}{
		{"all ones", uniformVector(1), 1.0},
		{"all zeros", uniformVector(0), 0.0},
		{"all half", uniformVector(0.5), 0.5},
		{
			name: "typical salaried applicant",
			vector: []float64{
				0.9, 0.8, 0.5, 0.9,
				0.96, 1.0, 0.88, 0.94,
				0.5, 0.5, 0.5, 0.5,
				0.8, 0.8,
			},
			want: 0.818,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(context.Background(), tt.vector)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.RiskScore, 1e-9)
			assert.InDelta(t, 1.0, got.RiskScore+got.DefaultProbability, 1e-12)
			assert.Equal(t, 0.85, got.Confidence)
			assert.Equal(t, GroupImportance, got.FeatureImportance)
			assert.Equal(t, models.PredictionFromModel, got.Source)
		})
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range DefaultWeights {
		sum += w
	}
	assert.Len(t, DefaultWeights, 14)
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestWeightedModel_RejectsInvalidVectors(t *testing.T) {
	m := NewWeightedModel()
	bad := map[string][]float64{
		"too short": uniformVector(0.5)[:13],
		"nan":       append(uniformVector(0.5)[:13], math.NaN()),
		"above one": append(uniformVector(0.5)[:13], 1.2),
		"negative":  append(uniformVector(0.5)[:13], -0.1),
	}
	for name, v := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := m.Predict(context.Background(), v)
			assert.ErrorIs(t, err, ErrInvalidVector)
		})
	}
}

func TestFallback(t *testing.T) {
	f := models.CreditScoreFactors{
		Traditional: models.TraditionalFactors{Income: 0.9, Employment: 0.8, CreditHistory: 0.5, DebtToIncome: 0.9},
		Alternative: models.AlternativeFactors{MobileReliability: 0.96, UtilityPayments: 1, SocialStability: 0.88, BehavioralPatterns: 0.94},
		Rural:       models.RuralFactors{LandOwnership: 0.5, CropPatterns: 0.5, SeasonalIncome: 0.5, CommunityStanding: 0.5},
	}

	got := Fallback(f)
	assert.InDelta(t, 0.4*0.775+0.4*0.945+0.2*0.5, got.RiskScore, 1e-9)
	assert.InDelta(t, 1.0, got.RiskScore+got.DefaultProbability, 1e-12)
	assert.Equal(t, 0.7, got.Confidence)
	assert.Equal(t, models.FeatureImportance{Traditional: 0.4, Alternative: 0.4, Rural: 0.2}, got.FeatureImportance)
	assert.Equal(t, models.PredictionFromFallback, got.Source)
}

func TestRemoteModel_Predict(t *testing.T) {
	var received assessRiskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assess-risk", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"riskScore":0.72,"defaultProbability":0.5,"confidence":0.9,"decision":"approved"}`))
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL+"/", time.Second)
	ctx := WithApplicationID(context.Background(), "app-1")

	got, err := m.Predict(ctx, uniformVector(0.5))
	require.NoError(t, err)
	assert.Equal(t, "app-1", received.ApplicationID)
	assert.Len(t, received.Features, 14)
	assert.InDelta(t, 0.72, got.RiskScore, 1e-12)
	assert.InDelta(t, 0.28, got.DefaultProbability, 1e-12)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, GroupImportance, got.FeatureImportance)
}

func TestRemoteModel_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusServiceUnavailable, `{"error":"loading"}`, "503"},
		{"malformed json", http.StatusOK, `not json`, "decode response"},
		{"missing score", http.StatusOK, `{"confidence":0.8}`, "missing riskScore"},
		{"score out of range", http.StatusOK, `{"riskScore":1.4,"confidence":0.8}`, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRemoteModel(srv.URL, time.Second).Predict(context.Background(), uniformVector(0.5))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRemoteModel_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewRemoteModel(srv.URL, 5*time.Second).Predict(ctx, uniformVector(0.5))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
