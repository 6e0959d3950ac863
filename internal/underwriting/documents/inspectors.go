package documents

import (
	"context"

	"underwriting-workers/internal/models"
)

// TextExtractor pulls text out of a document image or PDF.
type TextExtractor interface {
	ExtractText(ctx context.Context, doc models.Document) (string, error)
}

// AuthenticityChecker returns a score in [0,1].
type AuthenticityChecker interface {
	CheckAuthenticity(ctx context.Context, doc models.Document, text string) (float64, error)
}

// QualityAssessor returns a score in [0,1].
type QualityAssessor interface {
	AssessQuality(ctx context.Context, doc models.Document) (float64, error)
}

// FraudDetector returns zero or more human-readable fraud flags.
type FraudDetector interface {
	DetectFraud(ctx context.Context, doc models.Document, text string) ([]string, error)
}

// StaticInspector implements every inspection interface with fixed results.
// It stands in until OCR and forensic services are connected.
type StaticInspector struct {
	Text         string
	Authenticity float64
	Quality      float64
	Flags        []string
}

// DefaultInspector returns the stand-in used in production today.
func DefaultInspector() *StaticInspector {
	return &StaticInspector{Authenticity: 0.8, Quality: 0.8}
}

func (s *StaticInspector) ExtractText(context.Context, models.Document) (string, error) {
	return s.Text, nil
}

func (s *StaticInspector) CheckAuthenticity(context.Context, models.Document, string) (float64, error) {
	return s.Authenticity, nil
}

func (s *StaticInspector) AssessQuality(context.Context, models.Document) (float64, error) {
	return s.Quality, nil
}

func (s *StaticInspector) DetectFraud(context.Context, models.Document, string) ([]string, error) {
	if len(s.Flags) == 0 {
		return nil, nil
	}
	return append([]string(nil), s.Flags...), nil
}
