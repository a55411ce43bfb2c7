package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/replydesk/replydesk-backend/internal/classifier"
	apperrors "github.com/replydesk/replydesk-backend/internal/errors"
	"github.com/replydesk/replydesk-backend/internal/events"
	"github.com/replydesk/replydesk-backend/internal/ingest"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
	"github.com/replydesk/replydesk-backend/internal/rules"
)

// ThreadTriage reports what ingesting one thread did
type ThreadTriage struct {
	Thread      *models.Thread      `json:"thread"`
	NewMessages int                 `json:"new_messages"`
	Suggestions []models.Suggestion `json:"suggestions"`
	Skipped     int                 `json:"skipped"`
}

// TriageResult is the outcome of one upload
type TriageResult struct {
	Threads []ThreadTriage `json:"threads"`
}

// TriageService ingests uploaded threads and records an action suggestion
// for each message that still needs one
type TriageService interface {
	// IngestAndTriage validates, stores and classifies an upload. The whole
	// payload is validated before anything is written; a bad thread entry
	// fails the upload without partial writes.
	IngestAndTriage(ctx context.Context, payload *ingest.Payload) (*TriageResult, error)
}

// triageService implements TriageService
type triageService struct {
	threads     repository.ThreadRepository
	suggestions repository.SuggestionRepository
	classifier  classifier.Classifier
	evaluator   *rules.Evaluator
	source      models.SuggestionSource
	notifier    events.Notifier
	logger      *slog.Logger
}

// NewTriageService creates a new TriageService instance. source labels
// suggestions produced by the configured classifier. notifier may be nil.
func NewTriageService(
	threads repository.ThreadRepository,
	suggestions repository.SuggestionRepository,
	cls classifier.Classifier,
	evaluator *rules.Evaluator,
	source models.SuggestionSource,
	notifier events.Notifier,
	logger *slog.Logger,
) TriageService {
	return &triageService{
		threads:     threads,
		suggestions: suggestions,
		classifier:  cls,
		evaluator:   evaluator,
		source:      source,
		notifier:    notifier,
		logger:      logger,
	}
}

// IngestAndTriage validates, stores and classifies an upload
func (s *triageService) IngestAndTriage(ctx context.Context, payload *ingest.Payload) (*TriageResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	for i := range payload.Threads {
		if err := payload.Threads[i].Normalize(); err != nil {
			return nil, err
		}
	}

	result := &TriageResult{}
	for i := range payload.Threads {
		triaged, err := s.triageThread(ctx, &payload.Threads[i])
		if err != nil {
			return nil, err
		}
		result.Threads = append(result.Threads, *triaged)
	}
	return result, nil
}

// triageThread stores one thread and classifies its undecided messages.
// Classification runs outside any store transaction; each suggestion is
// persisted in its own short write.
func (s *triageService) triageThread(ctx context.Context, input *ingest.ThreadInput) (*ThreadTriage, error) {
	externalID := input.ID
	if externalID == "" {
		externalID = uuid.NewString()
	}

	thread := &models.Thread{ExternalID: externalID, Subject: input.Subject}
	messages := make([]models.Message, 0, len(input.Messages))
	for i := range input.Messages {
		m := &input.Messages[i]
		messages = append(messages, models.Message{
			DedupKey:  m.DedupKey(),
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Body:      m.Body,
			Timestamp: m.Time(),
		})
	}

	upserted, err := s.threads.Upsert(ctx, thread, messages)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to store thread")
	}

	s.logger.Info("thread ingested",
		slog.String("external_id", upserted.Thread.ExternalID),
		slog.Int("new_messages", upserted.NewMessages),
		slog.Int("total_messages", len(upserted.Messages)))

	triaged := &ThreadTriage{Thread: upserted.Thread, NewMessages: upserted.NewMessages}
	for i := range upserted.Messages {
		msg := &upserted.Messages[i]

		accepted, err := s.suggestions.HasAcceptedDecision(ctx, msg.ID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to check message decisions")
		}
		if accepted {
			triaged.Skipped++
			continue
		}

		prior := make([]string, 0, i)
		for _, earlier := range upserted.Messages[:i] {
			prior = append(prior, earlier.Body)
		}

		suggestion, err := s.classifyAndRecord(ctx, upserted.Thread, msg, prior, len(upserted.Messages))
		if err != nil {
			return nil, err
		}
		triaged.Suggestions = append(triaged.Suggestions, *suggestion)
	}

	return triaged, nil
}

// classifyAndRecord runs one message through the classifier and the action
// rules and appends the outcome to the suggestion ledger. A classifier
// failure is recorded too, with the raw provider payload preserved, so the
// message still surfaces for manual triage.
func (s *triageService) classifyAndRecord(ctx context.Context, thread *models.Thread, msg *models.Message, prior []string, messageCount int) (*models.Suggestion, error) {
	suggestion := &models.Suggestion{MessageID: msg.ID, Source: s.source}

	res, err := s.classifier.Classify(ctx, classifier.Input{
		Body:          msg.Body,
		ThreadSubject: thread.Subject,
		MessageCount:  messageCount,
		PriorBodies:   prior,
	})
	if err != nil {
		s.logger.Warn("classification failed",
			slog.Uint64("message_id", uint64(msg.ID)),
			slog.Any("error", err))
		suggestion.Intent = models.IntentUnclassified
		suggestion.Confidence = 0
		suggestion.Source = models.SourceFallback
		suggestion.RawResponse = string(classifier.RawPayload(err))
	} else {
		suggestion.Intent = res.Intent
		suggestion.Confidence = res.Confidence
		suggestion.FollowUp = res.FollowUp
		suggestion.RawResponse = string(res.Raw)
	}

	rec := s.evaluator.Evaluate(suggestion.Intent, suggestion.Confidence)
	suggestion.SuggestedAction = rec.Action
	suggestion.MappedAction = rec.MappedAction
	suggestion.SetRequiredFields(rec.RequiredFields)

	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		return nil, apperrors.Wrap(err, "failed to record suggestion")
	}

	s.logger.Info("suggestion recorded",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.String("intent", suggestion.Intent),
		slog.Float64("confidence", suggestion.Confidence),
		slog.String("action", suggestion.SuggestedAction))

	if s.notifier != nil {
		s.notifier.Notify(thread.ID, events.EventTypeSuggestion, suggestion)
	}

	return suggestion, nil
}
