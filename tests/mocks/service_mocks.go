package mocks

import (
	"context"

	"github.com/replydesk/replydesk-backend/internal/ingest"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockTriageService implements services.TriageService
type MockTriageService struct {
	mock.Mock
}

// IngestAndTriage validates, stores and classifies an upload
func (m *MockTriageService) IngestAndTriage(ctx context.Context, payload *ingest.Payload) (*services.TriageResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TriageResult), args.Error(1)
}

// MockDecisionService implements services.DecisionService
type MockDecisionService struct {
	mock.Mock
}

// RecordDecision appends a decision for the suggestion
func (m *MockDecisionService) RecordDecision(ctx context.Context, suggestionID uint, input services.DecisionInput) (*services.DecisionOutcome, error) {
	args := m.Called(ctx, suggestionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DecisionOutcome), args.Error(1)
}

// GetDecision retrieves a decision by ID
func (m *MockDecisionService) GetDecision(ctx context.Context, id uint) (*models.Decision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Decision), args.Error(1)
}

// ListBySuggestion lists the decisions recorded against a suggestion
func (m *MockDecisionService) ListBySuggestion(ctx context.Context, suggestionID uint) ([]models.Decision, error) {
	args := m.Called(ctx, suggestionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Decision), args.Error(1)
}

// MockDraftService implements services.DraftService
type MockDraftService struct {
	mock.Mock
}

// CreateForDecision authors a draft for a decision
func (m *MockDraftService) CreateForDecision(ctx context.Context, decisionID uint, subject, body string) (*models.Draft, error) {
	args := m.Called(ctx, decisionID, subject, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// GetDraft retrieves a draft by ID
func (m *MockDraftService) GetDraft(ctx context.Context, id uint) (*models.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// ListDrafts lists drafts, optionally filtered by status
func (m *MockDraftService) ListDrafts(ctx context.Context, status string, limit, offset int) ([]models.Draft, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Draft), args.Get(1).(int64), args.Error(2)
}

// EditDraft applies a partial edit
func (m *MockDraftService) EditDraft(ctx context.Context, id uint, edit services.DraftEdit) (*models.Draft, error) {
	args := m.Called(ctx, id, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// SendDraft transitions the draft to sent
func (m *MockDraftService) SendDraft(ctx context.Context, id uint) (*models.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}
