package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// Indexer writes assessments to an Elasticsearch index for reporting.
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{client: client, index: index}
}

type indexDocument struct {
	AssessmentID        string    `json:"assessmentId"`
	ApplicationID       string    `json:"applicationId"`
	CreditScore         int       `json:"creditScore"`
	RiskCategory        string    `json:"riskCategory"`
	Decision            string    `json:"decision"`
	ApprovalProbability float64   `json:"approvalProbability"`
	RecommendedAmount   float64   `json:"recommendedAmount"`
	InterestRate        float64   `json:"interestRate"`
	MonthlyPayment      float64   `json:"monthlyPayment"`
	Confidence          float64   `json:"confidence"`
	Flags               []string  `json:"flags"`
	PredictionSource    string    `json:"predictionSource"`
	NarrativeSource     string    `json:"narrativeSource"`
	AssessedAt          time.Time `json:"assessedAt"`
}

// Index upserts the record under its assessment ID.
func (i *Indexer) Index(ctx context.Context, rec Record) error {
	a := rec.Assessment
	body, err := json.Marshal(indexDocument{
		AssessmentID:        rec.AssessmentID,
		ApplicationID:       rec.ApplicationID,
		CreditScore:         a.CreditScore,
		RiskCategory:        string(a.RiskCategory),
		Decision:            string(a.Decision),
		ApprovalProbability: a.ApprovalProbability,
		RecommendedAmount:   a.RecommendedAmount,
		InterestRate:        a.InterestRate,
		MonthlyPayment:      a.MonthlyPayment,
		Confidence:          a.Confidence,
		Flags:               a.Flags,
		PredictionSource:    string(a.PredictionSource),
		NarrativeSource:     string(a.NarrativeSource),
		AssessedAt:          rec.AssessedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal index document: %w", err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(rec.AssessmentID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index assessment: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index assessment: %s: %s", res.Status(), msg)
	}
	return nil
}
