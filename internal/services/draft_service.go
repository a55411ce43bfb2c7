package services

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/replydesk/replydesk-backend/internal/errors"
	"github.com/replydesk/replydesk-backend/internal/events"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
)

// DraftEdit is a partial update to a draft. Nil fields are left untouched.
type DraftEdit struct {
	Subject *string `json:"subject,omitempty"`
	Body    *string `json:"body,omitempty"`
}

// DraftService manages the reply draft lifecycle: authored while a draft,
// editable until sent, immutable afterwards
type DraftService interface {
	// CreateForDecision authors a draft for a decision that does not have
	// one yet
	CreateForDecision(ctx context.Context, decisionID uint, subject, body string) (*models.Draft, error)

	// GetDraft retrieves a draft by ID
	GetDraft(ctx context.Context, id uint) (*models.Draft, error)

	// ListDrafts lists drafts, optionally filtered by status
	ListDrafts(ctx context.Context, status string, limit, offset int) ([]models.Draft, int64, error)

	// EditDraft applies a partial edit. Sent drafts are immutable.
	EditDraft(ctx context.Context, id uint, edit DraftEdit) (*models.Draft, error)

	// SendDraft transitions the draft to sent exactly once
	SendDraft(ctx context.Context, id uint) (*models.Draft, error)
}

// draftService implements DraftService
type draftService struct {
	drafts      repository.DraftRepository
	decisions   repository.DecisionRepository
	suggestions repository.SuggestionRepository
	threads     repository.ThreadRepository
	notifier    events.Notifier
	logger      *slog.Logger
}

// NewDraftService creates a new DraftService instance. notifier may be nil.
func NewDraftService(
	drafts repository.DraftRepository,
	decisions repository.DecisionRepository,
	suggestions repository.SuggestionRepository,
	threads repository.ThreadRepository,
	notifier events.Notifier,
	logger *slog.Logger,
) DraftService {
	return &draftService{
		drafts:      drafts,
		decisions:   decisions,
		suggestions: suggestions,
		threads:     threads,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateForDecision authors a draft for a decision without one
func (s *draftService) CreateForDecision(ctx context.Context, decisionID uint, subject, body string) (*models.Draft, error) {
	if subject == "" || body == "" {
		return nil, apperrors.Validationf("draft subject and body are required")
	}

	if _, err := s.decisions.GetByID(ctx, decisionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundf("decision %d not found", decisionID)
		}
		return nil, apperrors.Wrap(err, "failed to load decision")
	}

	draft := &models.Draft{
		DecisionID: decisionID,
		Subject:    subject,
		Body:       body,
		Status:     models.StatusDraft,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, apperrors.Validationf("decision %d already has a draft", decisionID)
		}
		return nil, apperrors.Wrap(err, "failed to create draft")
	}

	s.logger.Info("draft created",
		slog.Uint64("draft_id", uint64(draft.ID)),
		slog.Uint64("decision_id", uint64(decisionID)))

	return draft, nil
}

// GetDraft retrieves a draft by ID
func (s *draftService) GetDraft(ctx context.Context, id uint) (*models.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundf("draft %d not found", id)
		}
		return nil, apperrors.Wrap(err, "failed to load draft")
	}
	return draft, nil
}

// ListDrafts lists drafts, optionally filtered by status
func (s *draftService) ListDrafts(ctx context.Context, status string, limit, offset int) ([]models.Draft, int64, error) {
	draftStatus := models.DraftStatus(status)
	if status != "" && !draftStatus.IsValid() {
		return nil, 0, apperrors.Validationf("invalid draft status %q", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	drafts, total, err := s.drafts.ListByStatus(ctx, draftStatus, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list drafts")
	}
	return drafts, total, nil
}

// EditDraft applies a partial edit to a pending draft
func (s *draftService) EditDraft(ctx context.Context, id uint, edit DraftEdit) (*models.Draft, error) {
	if edit.Subject == nil && edit.Body == nil {
		return nil, apperrors.Validationf("nothing to update")
	}
	if edit.Subject != nil && *edit.Subject == "" {
		return nil, apperrors.Validationf("draft subject cannot be emptied")
	}
	if edit.Body != nil && *edit.Body == "" {
		return nil, apperrors.Validationf("draft body cannot be emptied")
	}

	draft, err := s.drafts.UpdateContent(ctx, id, edit.Subject, edit.Body)
	if err != nil {
		return nil, s.translateDraftErr(err, id)
	}

	s.logger.Info("draft edited", slog.Uint64("draft_id", uint64(id)))
	return draft, nil
}

// SendDraft transitions the draft to sent. Exactly one caller wins; any
// repeat gets an already-sent error and sent_at stays untouched.
func (s *draftService) SendDraft(ctx context.Context, id uint) (*models.Draft, error) {
	draft, err := s.drafts.MarkSent(ctx, id)
	if err != nil {
		return nil, s.translateDraftErr(err, id)
	}

	s.logger.Info("draft sent",
		slog.Uint64("draft_id", uint64(id)),
		slog.Time("sent_at", *draft.SentAt))

	if s.notifier != nil {
		if threadID, lookupErr := s.threadIDForDraft(ctx, draft); lookupErr == nil {
			s.notifier.Notify(threadID, events.EventTypeDraftSent, draft)
		}
	}

	return draft, nil
}

// translateDraftErr maps repository results onto the API error taxonomy
func (s *draftService) translateDraftErr(err error, id uint) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFoundf("draft %d not found", id)
	case errors.Is(err, repository.ErrDraftSent):
		return apperrors.ErrAlreadySent
	default:
		return apperrors.Wrap(err, "draft operation failed")
	}
}

// threadIDForDraft walks draft -> decision -> suggestion -> message to find
// the owning thread for event routing
func (s *draftService) threadIDForDraft(ctx context.Context, draft *models.Draft) (uint, error) {
	decision, err := s.decisions.GetByID(ctx, draft.DecisionID)
	if err != nil {
		return 0, err
	}
	suggestion, err := s.suggestions.GetByID(ctx, decision.SuggestionID)
	if err != nil {
		return 0, err
	}
	message, err := s.threads.GetMessage(ctx, suggestion.MessageID)
	if err != nil {
		return 0, err
	}
	return message.ThreadID, nil
}
