// internal/workers/underwriting/notify-decision/handler.go
package notifydecision

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclient "underwriting-workers/internal/common/aws"
	"underwriting-workers/internal/common/camunda"
	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
)

const (
	TaskType = "notify-decision"
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// SNSService is satisfied by *aws.SNSClient and by *sns.Client.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	snsClient    SNSService
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

// NewHandler accepts a nil snsClient when SMS is disabled.
func NewHandler(config *Config, snsClient SNSService, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       l,
		snsClient:    snsClient,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ApplicationID) == "" {
		return nil, apperrors.NewInvalidInputError("applicationId is required", nil)
	}
	tmpl, ok := templates[input.Decision]
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown decision %q", input.Decision), nil)
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
	}
	if !h.config.SMSEnabled || h.snsClient == nil {
		return output, nil
	}

	phone, err := h.normalizePhone(input.PhoneNumber)
	if err != nil {
		h.logger.Warn("no usable phone number", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"error":         err.Error(),
		})
		output.Status = StatusFailed
		return output, nil
	}

	message := renderTemplate(tmpl, templateData(input))
	if _, err := h.snsClient.Publish(ctx, awsclient.NewSMSInput(phone, message, h.config.SenderID)); err != nil {
		h.logger.Error("SMS send failed", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"error":         err.Error(),
		})
		output.Status = StatusFailed
		return output, nil
	}

	output.Status = StatusSent
	output.SentAt = h.now().UTC().Format(time.RFC3339)
	h.logger.Info("decision SMS sent", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"decision":       input.Decision,
		"notificationId": output.NotificationID,
	})
	return output, nil
}

// normalizePhone strips separators and prefixes bare ten-digit numbers with
// the default country code.
func (h *Handler) normalizePhone(raw string) (string, error) {
	phone := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
	if phone == "" {
		return "", fmt.Errorf("phone number is empty")
	}
	if len(phone) == 10 && !strings.HasPrefix(phone, "+") {
		phone = h.config.DefaultCountryCode + phone
	}
	if !e164.MatchString(phone) {
		return "", fmt.Errorf("phone number is not E.164")
	}
	return phone, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
