// Package documents aggregates per-document inspection results.
package documents

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"underwriting-workers/internal/models"
)

// neutralScore is reported for an empty document set.
const neutralScore = 0.5

// Analyzer runs text extraction, authenticity, quality and fraud checks on each document.
type Analyzer struct {
	extractor    TextExtractor
	authenticity AuthenticityChecker
	quality      QualityAssessor
	fraud        FraudDetector
	concurrency  int
}

type Option func(*Analyzer)

func WithTextExtractor(e TextExtractor) Option { return func(a *Analyzer) { a.extractor = e } }
func WithAuthenticityChecker(c AuthenticityChecker) Option { return func(a *Analyzer) { a.authenticity = c } }
func WithQualityAssessor(q QualityAssessor) Option { return func(a *Analyzer) { a.quality = q } }
func WithFraudDetector(f FraudDetector) Option { return func(a *Analyzer) { a.fraud = f } }

// WithConcurrency bounds how many documents are inspected at once.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAnalyzer wires the default static inspector for any collaborator not supplied.
func NewAnalyzer(opts ...Option) *Analyzer {
	def := DefaultInspector()
	a := &Analyzer{
		extractor:    def,
		authenticity: def,
		quality:      def,
		fraud:        def,
		concurrency:  4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type inspection struct {
	authenticity float64
	quality      float64
	flags        []string
}

// Analyze inspects every document and averages the scores. Fraud flags keep document
// order. An empty set yields neutral scores and no flags.
func (a *Analyzer) Analyze(ctx context.Context, docs []models.Document) (models.DocumentAnalysis, error) {
	if len(docs) == 0 {
		return models.DocumentAnalysis{
			Authenticity: neutralScore,
			Quality:      neutralScore,
			FraudFlags:   []string{},
		}, nil
	}

	results := make([]inspection, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range docs {
		i := i
		g.Go(func() error {
			r, err := a.inspect(gctx, docs[i])
			if err != nil {
				return fmt.Errorf("document %s: %w", docs[i].ID, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.DocumentAnalysis{}, err
	}

	var authSum, qualSum float64
	flags := []string{}
	for _, r := range results {
		authSum += r.authenticity
		qualSum += r.quality
		flags = append(flags, r.flags...)
	}

	n := float64(len(docs))
	return models.DocumentAnalysis{
		Authenticity: authSum / n,
		Quality:      qualSum / n,
		FraudFlags:   flags,
	}, nil
}

func (a *Analyzer) inspect(ctx context.Context, doc models.Document) (inspection, error) {
	if err := ctx.Err(); err != nil {
		return inspection{}, err
	}

	text, err := a.extractor.ExtractText(ctx, doc)
	if err != nil {
		return inspection{}, fmt.Errorf("extract text: %w", err)
	}
	auth, err := a.authenticity.CheckAuthenticity(ctx, doc, text)
	if err != nil {
		return inspection{}, fmt.Errorf("authenticity check: %w", err)
	}
	qual, err := a.quality.AssessQuality(ctx, doc)
	if err != nil {
		return inspection{}, fmt.Errorf("quality assessment: %w", err)
	}
	flags, err := a.fraud.DetectFraud(ctx, doc, text)
	if err != nil {
		return inspection{}, fmt.Errorf("fraud detection: %w", err)
	}

	if !inUnitRange(auth) || !inUnitRange(qual) {
		return inspection{}, fmt.Errorf("inspection scores out of range: authenticity=%v quality=%v", auth, qual)
	}
	return inspection{authenticity: auth, quality: qual, flags: flags}, nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
