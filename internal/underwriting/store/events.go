package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const EventAssessmentCompleted = "underwriting.assessment.completed"

// Publisher is satisfied by messaging.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// AssessmentCompleted is the event emitted for every new assessment.
type AssessmentCompleted struct {
	EventID           string    `json:"eventId"`
	EventType         string    `json:"eventType"`
	AssessmentID      string    `json:"assessmentId"`
	ApplicationID     string    `json:"applicationId"`
	CreditScore       int       `json:"creditScore"`
	RiskCategory      string    `json:"riskCategory"`
	Decision          string    `json:"decision"`
	RecommendedAmount float64   `json:"recommendedAmount"`
	InterestRate      float64   `json:"interestRate"`
	MonthlyPayment    float64   `json:"monthlyPayment"`
	PredictionSource  string    `json:"predictionSource"`
	NarrativeSource   string    `json:"narrativeSource"`
	OccurredAt        time.Time `json:"occurredAt"`
}

// EventPublisher announces assessments on a kafka topic keyed by application ID.
type EventPublisher struct {
	publisher Publisher
	topic     string
}

func NewEventPublisher(p Publisher, topic string) *EventPublisher {
	if topic == "" {
		topic = EventAssessmentCompleted
	}
	return &EventPublisher{publisher: p, topic: topic}
}

func (e *EventPublisher) PublishCompleted(ctx context.Context, rec Record) error {
	a := rec.Assessment
	event := AssessmentCompleted{
		EventID:           uuid.NewString(),
		EventType:         EventAssessmentCompleted,
		AssessmentID:      rec.AssessmentID,
		ApplicationID:     rec.ApplicationID,
		CreditScore:       a.CreditScore,
		RiskCategory:      string(a.RiskCategory),
		Decision:          string(a.Decision),
		RecommendedAmount: a.RecommendedAmount,
		InterestRate:      a.InterestRate,
		MonthlyPayment:    a.MonthlyPayment,
		PredictionSource:  string(a.PredictionSource),
		NarrativeSource:   string(a.NarrativeSource),
		OccurredAt:        rec.AssessedAt,
	}
	return e.publisher.Publish(ctx, e.topic, rec.ApplicationID, event, map[string]string{
		"eventType": EventAssessmentCompleted,
		"eventId":   event.EventID,
	})
}
