// internal/workers/underwriting/ai-underwriting/handler_test.go
package aiunderwriting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"underwriting-workers/internal/common/config"
	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting"
	"underwriting-workers/internal/underwriting/documents"
	"underwriting-workers/internal/underwriting/narrative"
	"underwriting-workers/internal/underwriting/riskmodel"
	"underwriting-workers/internal/underwriting/store"
)

// ==========================
// Mock Implementations
// ==========================

type stubAssessor struct {
	result *models.RiskAssessment
	err    error
	calls  int
}

func (s *stubAssessor) Assess(ctx context.Context, _ underwriting.Request) (*models.RiskAssessment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := *s.result
	return &out, nil
}

type memoryRepository struct {
	mu      sync.Mutex
	records map[string]store.Record
	saveErr error
	findErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]store.Record{}}
}

func (r *memoryRepository) Save(_ context.Context, rec store.Record) (*store.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	key := rec.ApplicationID + "/" + rec.InputHash
	if existing, ok := r.records[key]; ok {
		return &existing, nil
	}
	r.records[key] = rec
	return &rec, nil
}

func (r *memoryRepository) FindByInput(_ context.Context, applicationID, inputHash string) (*store.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec, ok := r.records[applicationID+"/"+inputHash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

type recordingIndexer struct {
	indexed []store.Record
	err     error
}

func (i *recordingIndexer) Index(_ context.Context, rec store.Record) error {
	i.indexed = append(i.indexed, rec)
	return i.err
}

type recordingEvents struct {
	published []store.Record
	err       error
}

func (e *recordingEvents) PublishCompleted(_ context.Context, rec store.Record) error {
	e.published = append(e.published, rec)
	return e.err
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) PublishCompleted(ctx context.Context, rec store.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type recordingScores struct {
	scores []int
}

func (s *recordingScores) RecordCreditScore(_ context.Context, score int, _ string) {
	s.scores = append(s.scores, score)
}

type stubNarrator struct{}

func (stubNarrator) Generate(context.Context, narrative.Input) (models.NarrativeAnalysis, error) {
	return models.NarrativeAnalysis{}, narrative.ErrChatFailed
}

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func createTestInput() *Input {
	return &Input{
		ApplicationID: "app-42",
		Application:   models.LoanApplication{RequestedAmount: 25000, Purpose: "home repair", DurationMonths: 12},
		Applicant: models.Applicant{
			ID:            "user-7",
			Name:          "Sunita Devi",
			Occupation:    models.OccupationGovernment,
			MonthlyIncome: 25000,
		},
		Documents: []models.Document{{ID: "doc-1", Type: "aadhaar"}},
		AlternativeData: models.AlternativeData{
			MobileUsage: models.MobileUsagePatterns{CallDuration: 120, DataUsage: 1200, TopUpFrequency: 0.9, NetworkReliability: 0.8},
			UtilityPayments: map[string]models.PaymentRecord{
				"electricity": {OnTime: 12, Total: 12},
			},
			SocialConnections: models.SocialConnections{FamilySize: 4, CommunityInvolvement: 0.8, ReferenceQuality: 0.8},
			BehavioralData:    models.BehavioralData{ResponseTime: 10, CompletionRate: 0.9},
		},
	}
}

func createTestAssessment() *models.RiskAssessment {
	return &models.RiskAssessment{
		CreditScore:         751,
		RiskCategory:        models.RiskLow,
		ApprovalProbability: 0.9,
		RecommendedAmount:   25000,
		InterestRate:        0.12,
		MonthlyPayment:      2221.22,
		Decision:            models.DecisionApproved,
		Confidence:          0.9,
		Flags:               []string{},
		Recommendations:     []string{},
		PredictionSource:    models.PredictionFromModel,
		NarrativeSource:     models.NarrativeFromLLM,
	}
}

type fixture struct {
	handler  *Handler
	assessor *stubAssessor
	repo     *memoryRepository
	redis    *miniredis.Miniredis
	cache    *store.Cache
	indexer  *recordingIndexer
	events   *recordingEvents
	scores   *recordingScores
}

func newFixture(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		assessor: &stubAssessor{result: createTestAssessment()},
		repo:     newMemoryRepository(),
		redis:    mr,
		cache:    store.NewCache(client, 15*time.Minute),
		indexer:  &recordingIndexer{},
		events:   &recordingEvents{},
		scores:   &recordingScores{},
	}
	f.handler = NewHandler(DefaultConfig(), Dependencies{
		Assessor:   f.assessor,
		Repository: f.repo,
		Cache:      f.cache,
		Indexer:    f.indexer,
		Events:     f.events,
		Scores:     f.scores,
	}, logger.NewTestLogger(t))
	f.handler.now = func() time.Time { return fixedNow }
	return f
}

func inputHash(t *testing.T, in *Input) string {
	req, err := underwriting.Normalize(in.request())
	require.NoError(t, err)
	hash, err := store.InputHash(req)
	require.NoError(t, err)
	return hash
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.StandardError {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %T", err)
	assert.Equal(t, code, stdErr.Code)
	return stdErr
}

// ==========================
// Fresh Assessments
// ==========================

func TestHandler_Execute_NewAssessment(t *testing.T) {
	f := newFixture(t)
	input := createTestInput()

	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	_, err = uuid.Parse(out.AssessmentID)
	assert.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, "2026-03-14T09:30:00Z", out.AssessedAt)
	assert.Equal(t, models.RiskLow, out.RiskCategory)
	assert.Equal(t, models.DecisionApproved, out.Decision)
	assert.Equal(t, 751, out.Assessment.CreditScore)
	assert.Equal(t, 1, f.assessor.calls)

	hash := inputHash(t, input)
	saved, err := f.repo.FindByInput(context.Background(), "app-42", hash)
	require.NoError(t, err)
	assert.Equal(t, out.AssessmentID, saved.AssessmentID)

	assert.True(t, f.redis.Exists(store.CacheKey("app-42", hash)))
	require.Len(t, f.indexer.indexed, 1)
	require.Len(t, f.events.published, 1)
	assert.Equal(t, out.AssessmentID, f.events.published[0].AssessmentID)
	assert.Equal(t, []int{751}, f.scores.scores)
}

func TestHandler_Execute_PublishesCompletedEvent(t *testing.T) {
	f := newFixture(t)
	events := &MockEvents{}
	events.On("PublishCompleted", mock.Anything, mock.MatchedBy(func(rec store.Record) bool {
		return rec.ApplicationID == "app-42" && rec.Assessment.CreditScore == 751 && rec.InputHash != ""
	})).Return(nil).Once()
	f.handler.deps.Events = events

	_, err := f.handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestHandler_Execute_ApplicationIDFromPayload(t *testing.T) {
	f := newFixture(t)
	input := createTestInput()
	input.ApplicationID = ""
	input.Application.ID = "app-99"

	_, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, f.events.published, 1)
	assert.Equal(t, "app-99", f.events.published[0].ApplicationID)
}

// ==========================
// Stored Assessments
// ==========================

func TestHandler_Execute_CacheHit(t *testing.T) {
	f := newFixture(t)
	input := createTestInput()

	first, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	second, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.AssessmentID, second.AssessmentID)
	assert.Equal(t, first.Assessment, second.Assessment)
	assert.Equal(t, 1, f.assessor.calls)
	assert.Len(t, f.events.published, 1)
}

func TestHandler_Execute_RepositoryHitRefillsCache(t *testing.T) {
	f := newFixture(t)
	input := createTestInput()

	first, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	f.redis.FlushAll()

	second, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.AssessmentID, second.AssessmentID)
	assert.Equal(t, 1, f.assessor.calls)
	assert.True(t, f.redis.Exists(store.CacheKey("app-42", inputHash(t, input))))
}

func TestHandler_Execute_ChangedInputIsReassessed(t *testing.T) {
	f := newFixture(t)
	input := createTestInput()

	_, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	input.Application.RequestedAmount = 30000
	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, 2, f.assessor.calls)
}

// ==========================
// Failures
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero amount", func(in *Input) { in.Application.RequestedAmount = 0 }},
		{"zero duration", func(in *Input) { in.Application.DurationMonths = 0 }},
		{"negative income", func(in *Input) { in.Applicant.MonthlyIncome = -1 }},
		{"no documents", func(in *Input) { in.Documents = nil }},
		{"unknown document type", func(in *Input) { in.Documents[0].Type = "passport-photo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			input := createTestInput()
			tt.mutate(input)

			_, err := f.handler.Execute(context.Background(), input)
			stdErr := requireCode(t, err, apperrors.ErrCodeInvalidInput)
			assert.False(t, stdErr.Retryable)
			assert.Equal(t, "UNDERWRITING_INVALID_INPUT", apperrors.ConvertToBPMNError(stdErr).Code)
			assert.Equal(t, 0, f.assessor.calls)
		})
	}
}

func TestHandler_Execute_AssessmentFailure(t *testing.T) {
	f := newFixture(t)
	f.assessor.err = fmt.Errorf("stage: %w", underwriting.ErrAssessmentFailed)

	_, err := f.handler.Execute(context.Background(), createTestInput())
	stdErr := requireCode(t, err, apperrors.ErrCodeAssessmentFailed)
	assert.Equal(t, "underwriting assessment failed", stdErr.Message)
	assert.Equal(t, "UNDERWRITING_FAILED", apperrors.ConvertToBPMNError(stdErr).Code)
	assert.Empty(t, f.events.published)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	f := newFixture(t)
	f.handler.deps.Cache = nil
	f.handler.deps.Repository = nil

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.handler.Execute(ctx, createTestInput())
	requireCode(t, err, apperrors.ErrCodeAssessmentTimeout)
}

func TestHandler_Execute_ConcurrentSaveReturnsStoredAssessment(t *testing.T) {
	f := newFixture(t)
	input := createTestInput()
	hash := inputHash(t, input)

	stored := store.Record{
		AssessmentID:  "0b5d7a3e-2c1f-4e8b-9d6a-7f3e2a1b4c5d",
		ApplicationID: "app-42",
		InputHash:     hash,
		Assessment:    *createTestAssessment(),
		AssessedAt:    fixedNow.Add(-time.Minute),
	}
	stored.Assessment.CreditScore = 748
	// The lookup misses, then the insert hits the row another worker saved.
	f.repo.findErr = store.ErrNotFound
	f.repo.records["app-42/"+hash] = stored

	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, out.Cached)
	assert.Equal(t, stored.AssessmentID, out.AssessmentID)
	assert.Equal(t, 748, out.Assessment.CreditScore)
	assert.Equal(t, 1, f.assessor.calls)
	assert.Empty(t, f.indexer.indexed)
	assert.Empty(t, f.events.published)
	assert.Empty(t, f.scores.scores)
}

func TestHandler_Execute_SaveFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.repo.saveErr = errors.New("connection reset")

	_, err := f.handler.Execute(context.Background(), createTestInput())
	requireCode(t, err, apperrors.ErrCodeDatabaseError)
	assert.Empty(t, f.indexer.indexed)
	assert.Empty(t, f.events.published)
}

func TestHandler_Execute_SideEffectFailuresAreIgnored(t *testing.T) {
	f := newFixture(t)
	f.redis.Close()
	f.repo.findErr = errors.New("replica lagging")
	f.indexer.err = errors.New("es unavailable")
	f.events.err = errors.New("broker down")

	out, err := f.handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Len(t, f.indexer.indexed, 1)
	assert.Len(t, f.events.published, 1)
}

func TestHandler_Execute_OptionalDependencies(t *testing.T) {
	assessor := &stubAssessor{result: createTestAssessment()}
	h := NewHandler(DefaultConfig(), Dependencies{Assessor: assessor}, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, out.RiskCategory)
}

// ==========================
// Pipeline Integration
// ==========================

func TestHandler_Execute_WithUnderwritingService(t *testing.T) {
	svc := underwriting.NewService(documents.NewAnalyzer(), riskmodel.NewWeightedModel(), stubNarrator{}, logger.NewTestLogger(t))
	h := NewHandler(DefaultConfig(), Dependencies{Assessor: svc}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	a := out.Assessment
	assert.Equal(t, models.NarrativeFromFallback, a.NarrativeSource)
	assert.Equal(t, models.PredictionFromModel, a.PredictionSource)
	assert.GreaterOrEqual(t, a.CreditScore, 0)
	assert.LessOrEqual(t, a.CreditScore, 850)
	assert.Equal(t, a.RiskCategory, out.RiskCategory)
}

// ==========================
// Input Contract
// ==========================

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "complete",
			doc: `{"applicationId":"app-1","application":{"requestedAmount":1000,"duration":6},
				"applicant":{"occupation":"farmer","monthlyIncome":8000},
				"documents":[{"type":"pan"}],"alternativeData":{}}`,
		},
		{
			name:    "missing applicant",
			doc:     `{"application":{"requestedAmount":1000,"duration":6},"documents":[]}`,
			wantErr: true,
		},
		{
			name: "amount as string",
			doc: `{"application":{"requestedAmount":"1000","duration":6},
				"applicant":{"occupation":"farmer","monthlyIncome":8000},"documents":[]}`,
			wantErr: true,
		},
		{
			name: "document without type",
			doc: `{"application":{"requestedAmount":1000,"duration":6},
				"applicant":{"occupation":"farmer","monthlyIncome":8000},"documents":[{"id":"d1"}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			doc:     `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.Timeout = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.MaxJobsActive = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.MaxRetries = -1
	assert.Error(t, c.Validate())
}

func TestFromWorkerConfig(t *testing.T) {
	c := FromWorkerConfig(config.WorkerConfig{Enabled: true, MaxJobsActive: 8, Timeout: 45000, MaxRetries: 2})
	require.NoError(t, c.Validate())
	assert.Equal(t, 45*time.Second, c.Timeout)
	assert.Equal(t, 8, c.MaxJobsActive)

	wc := c.WorkerConfig()
	assert.Equal(t, config.WorkerConfig{Enabled: true, MaxJobsActive: 8, Timeout: 45000, MaxRetries: 2}, wc)

	disabled := FromWorkerConfig(config.WorkerConfig{})
	assert.False(t, disabled.Enabled)
	assert.Equal(t, 60000, disabled.WorkerConfig().Timeout)
	assert.Equal(t, 5, disabled.WorkerConfig().MaxJobsActive)
}
