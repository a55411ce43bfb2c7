package mocks

import (
	"context"

	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockThreadRepository implements repository.ThreadRepository
type MockThreadRepository struct {
	mock.Mock
}

// Upsert creates or updates a thread and appends unseen messages
func (m *MockThreadRepository) Upsert(ctx context.Context, thread *models.Thread, messages []models.Message) (*repository.UpsertResult, error) {
	args := m.Called(ctx, thread, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UpsertResult), args.Error(1)
}

// GetByID retrieves a thread by its ID
func (m *MockThreadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

// GetByExternalID retrieves a thread by its upload identifier
func (m *MockThreadRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Thread, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

// List retrieves thread summaries with pagination
func (m *MockThreadRepository) List(ctx context.Context, limit, offset int) ([]models.ThreadSummary, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ThreadSummary), args.Get(1).(int64), args.Error(2)
}

// Delete deletes a thread by its ID
func (m *MockThreadRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GetMessage retrieves a single message by its ID
func (m *MockThreadRepository) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// CountMessages counts the messages stored for a thread
func (m *MockThreadRepository) CountMessages(ctx context.Context, threadID uint) (int64, error) {
	args := m.Called(ctx, threadID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSuggestionRepository implements repository.SuggestionRepository
type MockSuggestionRepository struct {
	mock.Mock
}

// Create appends a suggestion to the ledger
func (m *MockSuggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	args := m.Called(ctx, suggestion)
	return args.Error(0)
}

// GetByID retrieves a suggestion by its ID
func (m *MockSuggestionRepository) GetByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Suggestion), args.Error(1)
}

// ListByMessage retrieves all suggestions for a message, oldest first
func (m *MockSuggestionRepository) ListByMessage(ctx context.Context, messageID uint) ([]models.Suggestion, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Suggestion), args.Error(1)
}

// HasAcceptedDecision reports whether any suggestion on the message was accepted
func (m *MockSuggestionRepository) HasAcceptedDecision(ctx context.Context, messageID uint) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

// MockDecisionRepository implements repository.DecisionRepository
type MockDecisionRepository struct {
	mock.Mock
}

// Create records a decision without a draft
func (m *MockDecisionRepository) Create(ctx context.Context, decision *models.Decision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

// CreateWithDraft records a decision and its draft in one transaction
func (m *MockDecisionRepository) CreateWithDraft(ctx context.Context, decision *models.Decision, draft *models.Draft) error {
	args := m.Called(ctx, decision, draft)
	return args.Error(0)
}

// GetByID retrieves a decision by its ID
func (m *MockDecisionRepository) GetByID(ctx context.Context, id uint) (*models.Decision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Decision), args.Error(1)
}

// ListBySuggestion retrieves all decisions for a suggestion, oldest first
func (m *MockDecisionRepository) ListBySuggestion(ctx context.Context, suggestionID uint) ([]models.Decision, error) {
	args := m.Called(ctx, suggestionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Decision), args.Error(1)
}

// MockDraftRepository implements repository.DraftRepository
type MockDraftRepository struct {
	mock.Mock
}

// Create persists a new draft
func (m *MockDraftRepository) Create(ctx context.Context, draft *models.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

// GetByID retrieves a draft by its ID
func (m *MockDraftRepository) GetByID(ctx context.Context, id uint) (*models.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// GetByDecisionID retrieves the draft created for a decision
func (m *MockDraftRepository) GetByDecisionID(ctx context.Context, decisionID uint) (*models.Draft, error) {
	args := m.Called(ctx, decisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// ListByStatus retrieves drafts filtered by status with pagination
func (m *MockDraftRepository) ListByStatus(ctx context.Context, status models.DraftStatus, limit, offset int) ([]models.Draft, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Draft), args.Get(1).(int64), args.Error(2)
}

// UpdateContent edits the subject or body of an unsent draft
func (m *MockDraftRepository) UpdateContent(ctx context.Context, id uint, subject, body *string) (*models.Draft, error) {
	args := m.Called(ctx, id, subject, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// MarkSent transitions an unsent draft to sent
func (m *MockDraftRepository) MarkSent(ctx context.Context, id uint) (*models.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}
