package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/replydesk/replydesk-backend/internal/classifier"
	apperrors "github.com/replydesk/replydesk-backend/internal/errors"
	"github.com/replydesk/replydesk-backend/internal/events"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
)

// DecisionInput carries a human verdict on a suggestion
type DecisionInput struct {
	Kind           models.DecisionKind `json:"kind"`
	OverrideAction string              `json:"override_action,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	DecidedBy      string              `json:"decided_by,omitempty"`
}

// DecisionOutcome is a recorded decision plus the draft it authored, if any
type DecisionOutcome struct {
	Decision *models.Decision `json:"decision"`
	Draft    *models.Draft    `json:"draft,omitempty"`
}

// DecisionService records human verdicts on suggestions and authors the
// resulting reply drafts
type DecisionService interface {
	// RecordDecision appends a decision for the suggestion. Accepting, or
	// overriding with an action, also authors a draft in the same
	// transaction. Overriding without an action records the verdict alone.
	RecordDecision(ctx context.Context, suggestionID uint, input DecisionInput) (*DecisionOutcome, error)

	// GetDecision retrieves a decision by ID
	GetDecision(ctx context.Context, id uint) (*models.Decision, error)

	// ListBySuggestion lists the decisions recorded against a suggestion,
	// oldest first. The latest entry is the operative verdict.
	ListBySuggestion(ctx context.Context, suggestionID uint) ([]models.Decision, error)
}

// decisionService implements DecisionService
type decisionService struct {
	decisions   repository.DecisionRepository
	suggestions repository.SuggestionRepository
	threads     repository.ThreadRepository
	composer    classifier.ReplyComposer
	notifier    events.Notifier
	logger      *slog.Logger
}

// NewDecisionService creates a new DecisionService instance. composer and
// notifier may be nil; without a composer draft bodies come from a template.
func NewDecisionService(
	decisions repository.DecisionRepository,
	suggestions repository.SuggestionRepository,
	threads repository.ThreadRepository,
	composer classifier.ReplyComposer,
	notifier events.Notifier,
	logger *slog.Logger,
) DecisionService {
	return &decisionService{
		decisions:   decisions,
		suggestions: suggestions,
		threads:     threads,
		composer:    composer,
		notifier:    notifier,
		logger:      logger,
	}
}

// RecordDecision appends a decision and authors the resulting draft
func (s *decisionService) RecordDecision(ctx context.Context, suggestionID uint, input DecisionInput) (*DecisionOutcome, error) {
	if !input.Kind.IsValid() {
		return nil, apperrors.Validationf("invalid decision kind %q", input.Kind)
	}
	if input.Kind == models.DecisionAccept && input.OverrideAction != "" {
		return nil, apperrors.Validationf("an accept decision cannot carry an override action")
	}

	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundf("suggestion %d not found", suggestionID)
		}
		return nil, apperrors.Wrap(err, "failed to load suggestion")
	}

	message, err := s.threads.GetMessage(ctx, suggestion.MessageID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load message")
	}
	thread, err := s.threads.GetByID(ctx, message.ThreadID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load thread")
	}

	decision := &models.Decision{
		SuggestionID:   suggestion.ID,
		Kind:           input.Kind,
		OverrideAction: input.OverrideAction,
		Notes:          input.Notes,
		DecidedBy:      input.DecidedBy,
	}

	action := suggestion.SuggestedAction
	if input.Kind == models.DecisionOverride {
		action = input.OverrideAction
	}

	outcome := &DecisionOutcome{Decision: decision}
	if action == "" {
		// Override with no replacement action records the verdict alone
		if err := s.decisions.Create(ctx, decision); err != nil {
			return nil, apperrors.Wrap(err, "failed to record decision")
		}
	} else {
		// Compose before opening the transaction; the composer may be slow
		body := s.composeBody(ctx, action, suggestion, message)
		draft := &models.Draft{
			Subject: replySubject(thread.Subject),
			Body:    body,
			Status:  models.StatusDraft,
		}
		if err := s.decisions.CreateWithDraft(ctx, decision, draft); err != nil {
			return nil, apperrors.Wrap(err, "failed to record decision")
		}
		outcome.Draft = draft
	}

	s.logger.Info("decision recorded",
		slog.Uint64("suggestion_id", uint64(suggestion.ID)),
		slog.String("kind", string(input.Kind)),
		slog.String("action", action),
		slog.Bool("draft_authored", outcome.Draft != nil))

	if s.notifier != nil {
		s.notifier.Notify(thread.ID, events.EventTypeDecision, outcome)
	}

	return outcome, nil
}

// GetDecision retrieves a decision by ID
func (s *decisionService) GetDecision(ctx context.Context, id uint) (*models.Decision, error) {
	decision, err := s.decisions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundf("decision %d not found", id)
		}
		return nil, apperrors.Wrap(err, "failed to load decision")
	}
	return decision, nil
}

// ListBySuggestion lists the decisions recorded against a suggestion
func (s *decisionService) ListBySuggestion(ctx context.Context, suggestionID uint) ([]models.Decision, error) {
	if _, err := s.suggestions.GetByID(ctx, suggestionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundf("suggestion %d not found", suggestionID)
		}
		return nil, apperrors.Wrap(err, "failed to load suggestion")
	}
	list, err := s.decisions.ListBySuggestion(ctx, suggestionID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list decisions")
	}
	return list, nil
}

// composeBody produces the initial draft body. The composer is best-effort:
// on failure the template body stands in, the decision is not blocked.
func (s *decisionService) composeBody(ctx context.Context, action string, suggestion *models.Suggestion, message *models.Message) string {
	if s.composer != nil {
		body, err := s.composer.ComposeReply(ctx, action, message.Body)
		if err == nil && strings.TrimSpace(body) != "" {
			return body
		}
		if err != nil {
			s.logger.Warn("reply composition failed, using template body",
				slog.String("action", action),
				slog.Any("error", err))
		}
	}
	return templateBody(action, suggestion.RequiredFieldList())
}

// templateBody is the fallback draft body for an action
func templateBody(action string, requiredFields []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nThank you for reaching out. We are handling your request (%s).\n", action)
	if len(requiredFields) > 0 {
		b.WriteString("\nTo proceed we still need the following details:\n")
		for _, field := range requiredFields {
			fmt.Fprintf(&b, "- %s\n", field)
		}
	}
	b.WriteString("\nBest regards,\nThe Support Team\n")
	return b.String()
}

// replySubject derives the draft subject from the thread subject
func replySubject(threadSubject string) string {
	if threadSubject == "" {
		return "Re: your message"
	}
	if strings.HasPrefix(strings.ToLower(threadSubject), "re:") {
		return threadSubject
	}
	return "Re: " + threadSubject
}
