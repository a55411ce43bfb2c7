package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/replydesk/replydesk-backend/internal/classifier"
	apperrors "github.com/replydesk/replydesk-backend/internal/errors"
	"github.com/replydesk/replydesk-backend/internal/ingest"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
	"github.com/replydesk/replydesk-backend/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubClassifier returns a fixed result or error for every message
type stubClassifier struct {
	intent     string
	confidence float64
	err        error
	calls      int
}

func (s *stubClassifier) Classify(_ context.Context, in classifier.Input) (*classifier.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	raw, _ := json.Marshal(map[string]interface{}{"intent": s.intent, "confidence": s.confidence})
	return &classifier.Result{Intent: s.intent, Confidence: s.confidence, Raw: raw}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TriageServiceTestSuite is the test suite for TriageService
type TriageServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	threads     repository.ThreadRepository
	suggestions repository.SuggestionRepository
	decisions   repository.DecisionRepository
}

// SetupSuite runs once before all tests
func (s *TriageServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(&models.Thread{}, &models.Message{}, &models.Suggestion{}, &models.Decision{}, &models.Draft{})
	require.NoError(s.T(), err)

	s.db = db
	s.threads = repository.NewThreadRepository(db)
	s.suggestions = repository.NewSuggestionRepository(db)
	s.decisions = repository.NewDecisionRepository(db)
}

// TearDownSuite runs once after all tests
func (s *TriageServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data
func (s *TriageServiceTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM drafts")
	s.db.Exec("DELETE FROM decisions")
	s.db.Exec("DELETE FROM suggestions")
	s.db.Exec("DELETE FROM messages")
	s.db.Exec("DELETE FROM threads")
}

// TestTriageServiceTestSuite runs the test suite
func TestTriageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TriageServiceTestSuite))
}

func (s *TriageServiceTestSuite) newService(cls classifier.Classifier, source models.SuggestionSource, threshold float64) TriageService {
	return NewTriageService(s.threads, s.suggestions, cls, rules.NewEvaluator(threshold), source, nil, testLogger())
}

func mustParsePayload(t *testing.T, raw string) *ingest.Payload {
	t.Helper()
	payload, err := ingest.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return payload
}

const refundThread = `{"id":"t1","subject":"Refund?","messages":[{"sender":"a@x.com","body":"I want a refund","timestamp":"2024-01-01T00:00:00Z"}]}`

// ==================== IngestAndTriage Tests ====================

func (s *TriageServiceTestSuite) TestIngestAndTriage_HighConfidenceRefund() {
	// Arrange
	cls := &stubClassifier{intent: "refund_request", confidence: 0.92}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)

	// Act
	result, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))

	// Assert
	require.NoError(s.T(), err)
	require.Len(s.T(), result.Threads, 1)

	triaged := result.Threads[0]
	assert.Equal(s.T(), "t1", triaged.Thread.ExternalID)
	assert.Equal(s.T(), 1, triaged.NewMessages)
	require.Len(s.T(), triaged.Suggestions, 1)

	suggestion := triaged.Suggestions[0]
	assert.Equal(s.T(), "refund_request", suggestion.Intent)
	assert.Equal(s.T(), 0.92, suggestion.Confidence)
	assert.Equal(s.T(), "draft_refund_response", suggestion.SuggestedAction)
	assert.Equal(s.T(), []string{"order_id", "amount"}, suggestion.RequiredFieldList())
	assert.Equal(s.T(), models.SourceAI, suggestion.Source)
	assert.NotEmpty(s.T(), suggestion.RawResponse)
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_LowConfidenceDowngraded() {
	// Arrange - confidence 0.10, mapped action exists but is gated
	cls := &stubClassifier{intent: "refund_request", confidence: 0.10}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)

	// Act
	result, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))

	// Assert
	require.NoError(s.T(), err)
	suggestion := result.Threads[0].Suggestions[0]
	assert.Equal(s.T(), rules.ActionNeedsHumanReview, suggestion.SuggestedAction)
	assert.Equal(s.T(), "draft_refund_response", suggestion.MappedAction)
	assert.Equal(s.T(), []string{"order_id", "amount"}, suggestion.RequiredFieldList())
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_EmptyMessagesRejected() {
	// Arrange
	cls := &stubClassifier{intent: "interested", confidence: 0.9}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)
	payload := mustParsePayload(s.T(), `{"id":"t1","subject":"Empty","messages":[]}`)

	// Act
	_, err := svc.IngestAndTriage(context.Background(), payload)

	// Assert - validation fails and nothing is persisted
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)

	var count int64
	s.db.Model(&models.Thread{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_InvalidThreadAbortsWholePayload() {
	// Arrange - second thread is invalid, first must not be persisted
	cls := &stubClassifier{intent: "interested", confidence: 0.9}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)
	payload := mustParsePayload(s.T(), `{"threads":[`+refundThread+`,{"id":"t2","subject":"Bad","messages":[]}]}`)

	// Act
	_, err := svc.IngestAndTriage(context.Background(), payload)

	// Assert
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)

	var count int64
	s.db.Model(&models.Thread{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_ClassifierFailureRecorded() {
	// Arrange
	cls := &stubClassifier{err: &classifier.MalformedResponseError{
		Raw: []byte("not json at all"),
		Err: errors.New("no JSON object found"),
	}}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)

	// Act
	result, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))

	// Assert - failure becomes an unclassified, gated suggestion with raw kept
	require.NoError(s.T(), err)
	suggestion := result.Threads[0].Suggestions[0]
	assert.Equal(s.T(), models.IntentUnclassified, suggestion.Intent)
	assert.Equal(s.T(), float64(0), suggestion.Confidence)
	assert.Equal(s.T(), models.SourceFallback, suggestion.Source)
	assert.Equal(s.T(), "not json at all", suggestion.RawResponse)
	assert.Equal(s.T(), rules.ActionNeedsHumanReview, suggestion.SuggestedAction)
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_UnknownIntentManualTriage() {
	// Arrange
	cls := &stubClassifier{intent: "vogon_poetry", confidence: 0.95}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)

	// Act
	result, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))

	// Assert
	require.NoError(s.T(), err)
	suggestion := result.Threads[0].Suggestions[0]
	assert.Equal(s.T(), rules.ActionManualTriage, suggestion.SuggestedAction)
	assert.Empty(s.T(), suggestion.RequiredFieldList())
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_ReuploadAppendsSuggestion() {
	// Arrange - undecided messages are re-classified on re-upload
	cls := &stubClassifier{intent: "refund_request", confidence: 0.92}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)

	first, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))
	require.NoError(s.T(), err)

	// Act
	second, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))

	// Assert - one stored message, two ledger entries
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, second.Threads[0].NewMessages)
	assert.Equal(s.T(), 2, cls.calls)

	messageID := first.Threads[0].Suggestions[0].MessageID
	ledger, err := s.suggestions.ListByMessage(context.Background(), messageID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), ledger, 2)
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_SkipsAcceptedMessages() {
	// Arrange - accept the first suggestion, then re-upload
	cls := &stubClassifier{intent: "refund_request", confidence: 0.92}
	svc := s.newService(cls, models.SourceAI, rules.DefaultConfidenceThreshold)

	first, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))
	require.NoError(s.T(), err)
	suggestion := first.Threads[0].Suggestions[0]

	decision := &models.Decision{SuggestionID: suggestion.ID, Kind: models.DecisionAccept, DecidedBy: "ops"}
	require.NoError(s.T(), s.decisions.Create(context.Background(), decision))

	// Act
	second, err := svc.IngestAndTriage(context.Background(), mustParsePayload(s.T(), refundThread))

	// Assert - no second classification for a decided message
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, second.Threads[0].Skipped)
	assert.Empty(s.T(), second.Threads[0].Suggestions)
	assert.Equal(s.T(), 1, cls.calls)
}

func (s *TriageServiceTestSuite) TestIngestAndTriage_MissingExternalIDGetsGenerated() {
	// Arrange
	cls := &stubClassifier{intent: "interested", confidence: 0.9}
	svc := s.newService(cls, models.SourceKeyword, rules.DefaultConfidenceThreshold)
	payload := mustParsePayload(s.T(), `{"subject":"No id","messages":[{"sender":"a@x.com","body":"Tell me more"}]}`)

	// Act
	result, err := svc.IngestAndTriage(context.Background(), payload)

	// Assert
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), result.Threads[0].Thread.ExternalID)
	assert.Equal(s.T(), models.SourceKeyword, result.Threads[0].Suggestions[0].Source)
}
