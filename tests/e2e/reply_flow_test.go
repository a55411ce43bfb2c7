//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/api"
	"github.com/replydesk/replydesk-backend/internal/classifier"
	"github.com/replydesk/replydesk-backend/internal/events"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/rules"
	"github.com/replydesk/replydesk-backend/tests/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAPIKey = "e2e-test-key"

// scriptedClassifier returns a fixed result per intent keyword in the body,
// standing in for the provider during end to end runs.
type scriptedClassifier struct{}

func (scriptedClassifier) Classify(_ context.Context, in classifier.Input) (*classifier.Result, error) {
	intent := "unknown_intent"
	confidence := 0.92
	switch {
	case strings.Contains(in.Body, "refund"):
		intent = "refund_request"
	case strings.Contains(in.Body, "package"):
		intent = "request_details"
		confidence = 0.35
	}
	raw, _ := json.Marshal(map[string]interface{}{"intent": intent, "confidence": confidence})
	return &classifier.Result{Intent: intent, Confidence: confidence, Raw: raw}, nil
}

// ReplyFlowTestSuite drives the whole lifecycle through the HTTP surface:
// ingest, suggestion review, decision, draft editing and sending.
type ReplyFlowTestSuite struct {
	suite.Suite
	db   *gorm.DB
	echo *echo.Echo
}

// SetupSuite builds the router against an in-memory database
func (s *ReplyFlowTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// Enable foreign keys for SQLite (required for cascade delete)
	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(&models.Thread{}, &models.Message{}, &models.Suggestion{}, &models.Decision{}, &models.Draft{})
	require.NoError(s.T(), err)

	hub := events.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()

	s.db = db
	s.echo = api.NewRouter(&api.RouterConfig{
		DB:             db,
		Classifier:     scriptedClassifier{},
		Source:         models.SourceAI,
		Evaluator:      rules.NewDefaultEvaluator(),
		Hub:            hub,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		APIKey:         testAPIKey,
		AllowedOrigins: "http://localhost:3000",
		AppEnv:         "test",
		RateLimit:      1000,
		RateBurst:      1000,
	})
}

// TearDownSuite closes the database
func (s *ReplyFlowTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data
func (s *ReplyFlowTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM drafts")
	s.db.Exec("DELETE FROM decisions")
	s.db.Exec("DELETE FROM suggestions")
	s.db.Exec("DELETE FROM messages")
	s.db.Exec("DELETE FROM threads")
}

// TestReplyFlowTestSuite runs the test suite
func TestReplyFlowTestSuite(t *testing.T) {
	suite.Run(t, new(ReplyFlowTestSuite))
}

// request performs one authenticated request against the router
func (s *ReplyFlowTestSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the data field of a response envelope into out
func (s *ReplyFlowTestSuite) decode(rec *httptest.ResponseRecorder, out interface{}) {
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(s.T(), envelope.Success)
	require.NoError(s.T(), json.Unmarshal(envelope.Data, out))
}

type triageResponse struct {
	Threads []struct {
		Thread struct {
			ID       uint `json:"id"`
			Messages []struct {
				ID uint `json:"id"`
			} `json:"messages"`
		} `json:"thread"`
		NewMessages int                 `json:"new_messages"`
		Suggestions []models.Suggestion `json:"suggestions"`
		Skipped     int                 `json:"skipped"`
	} `json:"threads"`
}

// ==================== Lifecycle Tests ====================

func (s *ReplyFlowTestSuite) TestFullReplyLifecycle() {
	// Ingest a refund thread
	rec := s.request(http.MethodPost, "/api/threads/ingest", fixtures.SampleRefundPayload)
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	var triage triageResponse
	s.decode(rec, &triage)
	require.Len(s.T(), triage.Threads, 1)
	require.Len(s.T(), triage.Threads[0].Suggestions, 1)

	suggestion := triage.Threads[0].Suggestions[0]
	assert.Equal(s.T(), "refund_request", suggestion.Intent)
	assert.Equal(s.T(), "draft_refund_response", suggestion.SuggestedAction)
	assert.Equal(s.T(), models.SourceAI, suggestion.Source)

	// The suggestion is readable on its own and under its message
	rec = s.request(http.MethodGet, fmt.Sprintf("/api/suggestions/%d", suggestion.ID), "")
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, fmt.Sprintf("/api/messages/%d/suggestions", suggestion.MessageID), "")
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	// Accept the suggestion; a draft is authored in the same step
	rec = s.request(http.MethodPost, fmt.Sprintf("/api/suggestions/%d/decisions", suggestion.ID),
		`{"kind":"accept","decided_by":"operator@example.com"}`)
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	var outcome struct {
		Decision models.Decision `json:"decision"`
		Draft    *models.Draft   `json:"draft"`
	}
	s.decode(rec, &outcome)
	require.NotNil(s.T(), outcome.Draft)
	assert.Equal(s.T(), models.DecisionAccept, outcome.Decision.Kind)
	assert.Equal(s.T(), "Re: Refund for order #4521", outcome.Draft.Subject)
	assert.Contains(s.T(), outcome.Draft.Body, "order_id")
	assert.Equal(s.T(), models.StatusDraft, outcome.Draft.Status)

	// Edit the draft body before sending
	rec = s.request(http.MethodPatch, fmt.Sprintf("/api/drafts/%d", outcome.Draft.ID),
		`{"body":"Hi Alice,\n\nYour refund for order #4521 (49.90 EUR) is on its way.\n"}`)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var edited models.Draft
	s.decode(rec, &edited)
	assert.Contains(s.T(), edited.Body, "49.90 EUR")
	assert.Equal(s.T(), "Re: Refund for order #4521", edited.Subject)

	// Send it
	rec = s.request(http.MethodPost, fmt.Sprintf("/api/drafts/%d/send", outcome.Draft.ID), "")
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var sent models.Draft
	s.decode(rec, &sent)
	assert.Equal(s.T(), models.StatusSent, sent.Status)
	require.NotNil(s.T(), sent.SentAt)

	// A second send and any further edit are rejected
	rec = s.request(http.MethodPost, fmt.Sprintf("/api/drafts/%d/send", outcome.Draft.ID), "")
	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "STATE_ERROR")

	rec = s.request(http.MethodPatch, fmt.Sprintf("/api/drafts/%d", outcome.Draft.ID), `{"body":"too late"}`)
	assert.Equal(s.T(), http.StatusConflict, rec.Code)

	// Re-uploading the thread skips the accepted message entirely
	rec = s.request(http.MethodPost, "/api/threads/ingest", fixtures.SampleRefundPayload)
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	var again triageResponse
	s.decode(rec, &again)
	require.Len(s.T(), again.Threads, 1)
	assert.Equal(s.T(), 0, again.Threads[0].NewMessages)
	assert.Equal(s.T(), 1, again.Threads[0].Skipped)
	assert.Empty(s.T(), again.Threads[0].Suggestions)
}

func (s *ReplyFlowTestSuite) TestOverrideWithoutActionLeavesNoDraft() {
	// Ingest a low-confidence thread; the suggestion is confidence-gated
	rec := s.request(http.MethodPost, "/api/threads/ingest", fixtures.SampleMultiThreadPayload)
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	var triage triageResponse
	s.decode(rec, &triage)
	require.Len(s.T(), triage.Threads, 2)

	gated := triage.Threads[1].Suggestions[0]
	assert.Equal(s.T(), "needs_human_review", gated.SuggestedAction)
	assert.Equal(s.T(), "send_pricing", gated.MappedAction)

	// Override with no substitute action: decision only, no draft
	rec = s.request(http.MethodPost, fmt.Sprintf("/api/suggestions/%d/decisions", gated.ID),
		`{"kind":"override","notes":"not enough signal"}`)
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	var outcome struct {
		Decision models.Decision `json:"decision"`
		Draft    *models.Draft   `json:"draft"`
	}
	s.decode(rec, &outcome)
	assert.Equal(s.T(), models.DecisionOverride, outcome.Decision.Kind)
	assert.Nil(s.T(), outcome.Draft)

	// No drafts exist anywhere
	rec = s.request(http.MethodGet, "/api/drafts", "")
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), `"total":0`)
}

func (s *ReplyFlowTestSuite) TestInvalidUploadWritesNothing() {
	rec := s.request(http.MethodPost, "/api/threads/ingest", fixtures.SampleInvalidPayload)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "VALIDATION_ERROR")

	var count int64
	s.db.Model(&models.Thread{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// ==================== Security Tests ====================

func (s *ReplyFlowTestSuite) TestRequestWithoutAPIKeyRejected() {
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *ReplyFlowTestSuite) TestHealthBypassesAuth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
}
