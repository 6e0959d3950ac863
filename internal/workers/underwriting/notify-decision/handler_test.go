// internal/workers/underwriting/notify-decision/handler_test.go
package notifydecision

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriting-workers/internal/common/config"
	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc == nil {
		return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig(config.SMSConfig{Enabled: true, Region: "ap-south-1", SenderID: "LOANAI"}, config.WorkerConfig{})
}

func createTestInput() *Input {
	return &Input{
		ApplicationID:     "app-42",
		PhoneNumber:       "+919876543210",
		RiskCategory:      models.RiskLow,
		Decision:          models.DecisionApproved,
		RecommendedAmount: 25000,
		InterestRate:      0.12,
		MonthlyPayment:    2221.22,
	}
}

func createTestHandler(t *testing.T, cfg *Config, svc SNSService) *Handler {
	h := NewHandler(cfg, svc, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return h
}

// ==========================
// Sending
// ==========================

func TestHandler_Execute_ApprovedSMS(t *testing.T) {
	svc := &MockSNSService{}
	h := createTestHandler(t, createTestConfig(), svc)

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, "2026-03-14T09:30:00Z", out.SentAt)
	_, err = uuid.Parse(out.NotificationID)
	assert.NoError(t, err)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "+919876543210", awssdk.ToString(svc.calls[0].PhoneNumber))
	assert.Equal(t,
		"Congratulations! Your loan application app-42 is approved for Rs 25000.00 at 12% p.a. Monthly payment: Rs 2221.22.",
		awssdk.ToString(svc.calls[0].Message))
}

func TestHandler_Execute_TemplatesPerDecision(t *testing.T) {
	tests := []struct {
		decision models.Decision
		contains string
	}{
		{models.DecisionApproved, "is approved for"},
		{models.DecisionManualReview, "is under review"},
		{models.DecisionRejected, "unable to approve loan application app-42"},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			svc := &MockSNSService{}
			input := createTestInput()
			input.Decision = tt.decision

			out, err := createTestHandler(t, createTestConfig(), svc).Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, StatusSent, out.Status)
			require.Len(t, svc.calls, 1)
			assert.Contains(t, awssdk.ToString(svc.calls[0].Message), tt.contains)
			assert.NotContains(t, awssdk.ToString(svc.calls[0].Message), "{{")
		})
	}
}

func TestHandler_Execute_LocalNumberGetsCountryCode(t *testing.T) {
	svc := &MockSNSService{}
	input := createTestInput()
	input.PhoneNumber = "98765 43210"

	_, err := createTestHandler(t, createTestConfig(), svc).Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "+919876543210", awssdk.ToString(svc.calls[0].PhoneNumber))
}

// ==========================
// Degraded Paths
// ==========================

func TestHandler_Execute_PublishFailure(t *testing.T) {
	svc := &MockSNSService{
		PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	out, err := createTestHandler(t, createTestConfig(), svc).Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Empty(t, out.SentAt)
}

func TestHandler_Execute_Disabled(t *testing.T) {
	svc := &MockSNSService{}
	cfg := createTestConfig()
	cfg.SMSEnabled = false

	out, err := createTestHandler(t, cfg, svc).Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, out.SentAt)
	assert.Empty(t, svc.calls)
}

func TestHandler_Execute_DisabledIgnoresPhone(t *testing.T) {
	cfg := createTestConfig()
	cfg.SMSEnabled = false
	input := createTestInput()
	input.PhoneNumber = "12345"

	out, err := createTestHandler(t, cfg, &MockSNSService{}).Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
}

func TestHandler_Execute_NilClientIsDisabled(t *testing.T) {
	out, err := createTestHandler(t, createTestConfig(), nil).Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
}

func TestHandler_Execute_UnusablePhone(t *testing.T) {
	for _, phone := range []string{"", "12345", "+0123456789", "not-a-number"} {
		t.Run(phone, func(t *testing.T) {
			svc := &MockSNSService{}
			input := createTestInput()
			input.PhoneNumber = phone

			out, err := createTestHandler(t, createTestConfig(), svc).Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, out.Status)
			assert.Empty(t, out.SentAt)
			assert.Empty(t, svc.calls)
		})
	}
}

// ==========================
// Validation
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing application id", func(in *Input) { in.ApplicationID = " " }},
		{"unknown decision", func(in *Input) { in.Decision = "maybe" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)

			_, err := createTestHandler(t, createTestConfig(), &MockSNSService{}).Execute(context.Background(), input)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
		})
	}
}

// ==========================
// Template Rendering
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{"replaces known keys", "App {{applicationId}}", map[string]interface{}{"applicationId": "app-1"}, "App app-1"},
		{"drops missing keys", "Rs {{recommendedAmount}} due", map[string]interface{}{}, "Rs  due"},
		{"formats non-strings", "{{n}} items", map[string]interface{}{"n": 3}, "3 items"},
		{"unterminated placeholder", "Hello {{name", map[string]interface{}{}, "Hello {{name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}

func TestTemplateData_FormatsMoney(t *testing.T) {
	data := templateData(&Input{ApplicationID: "a", RecommendedAmount: 20000, InterestRate: 0.155, MonthlyPayment: 1805.17})
	assert.Equal(t, "20000.00", data["recommendedAmount"])
	assert.Equal(t, "15.5", data["interestRate"])
	assert.Equal(t, "1805.17", data["monthlyPayment"])
}
