package fixtures

import (
	"time"

	"github.com/replydesk/replydesk-backend/internal/models"
)

// ThreadBuilder creates test Thread instances with fluent API
type ThreadBuilder struct {
	thread models.Thread
}

// NewThreadBuilder creates a new ThreadBuilder with sensible defaults
func NewThreadBuilder() *ThreadBuilder {
	now := time.Now()
	return &ThreadBuilder{
		thread: models.Thread{
			ID:         1,
			ExternalID: "thread-001",
			Subject:    "Refund for order #4521",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

// WithID sets the thread ID
func (b *ThreadBuilder) WithID(id uint) *ThreadBuilder {
	b.thread.ID = id
	return b
}

// WithExternalID sets the upload identifier
func (b *ThreadBuilder) WithExternalID(externalID string) *ThreadBuilder {
	b.thread.ExternalID = externalID
	return b
}

// WithSubject sets the thread subject
func (b *ThreadBuilder) WithSubject(subject string) *ThreadBuilder {
	b.thread.Subject = subject
	return b
}

// WithMessages sets the preloaded messages
func (b *ThreadBuilder) WithMessages(messages ...models.Message) *ThreadBuilder {
	b.thread.Messages = messages
	return b
}

// Build returns the constructed Thread
func (b *ThreadBuilder) Build() *models.Thread {
	return &b.thread
}

// BuildValue returns the constructed Thread as a value (not pointer)
func (b *ThreadBuilder) BuildValue() models.Thread {
	return b.thread
}

// MessageBuilder creates test Message instances with fluent API
type MessageBuilder struct {
	message models.Message
}

// NewMessageBuilder creates a new MessageBuilder with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		message: models.Message{
			ID:        1,
			ThreadID:  1,
			DedupKey:  "ext:msg-001",
			Sender:    "alice@example.com",
			Body:      "I would like a refund for order #4521, it arrived broken.",
			Timestamp: time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC),
			CreatedAt: time.Now(),
		},
	}
}

// WithID sets the message ID
func (b *MessageBuilder) WithID(id uint) *MessageBuilder {
	b.message.ID = id
	return b
}

// WithThreadID sets the owning thread ID
func (b *MessageBuilder) WithThreadID(threadID uint) *MessageBuilder {
	b.message.ThreadID = threadID
	return b
}

// WithDedupKey sets the deduplication key
func (b *MessageBuilder) WithDedupKey(key string) *MessageBuilder {
	b.message.DedupKey = key
	return b
}

// WithSender sets the sender address
func (b *MessageBuilder) WithSender(sender string) *MessageBuilder {
	b.message.Sender = sender
	return b
}

// WithBody sets the message body
func (b *MessageBuilder) WithBody(body string) *MessageBuilder {
	b.message.Body = body
	return b
}

// WithTimestamp sets the message timestamp
func (b *MessageBuilder) WithTimestamp(t time.Time) *MessageBuilder {
	b.message.Timestamp = t
	return b
}

// Build returns the constructed Message
func (b *MessageBuilder) Build() *models.Message {
	return &b.message
}

// BuildValue returns the constructed Message as a value (not pointer)
func (b *MessageBuilder) BuildValue() models.Message {
	return b.message
}

// SuggestionBuilder creates test Suggestion instances with fluent API
type SuggestionBuilder struct {
	suggestion models.Suggestion
}

// NewSuggestionBuilder creates a new SuggestionBuilder with sensible defaults
func NewSuggestionBuilder() *SuggestionBuilder {
	s := models.Suggestion{
		ID:              1,
		MessageID:       1,
		Intent:          "refund_request",
		Confidence:      0.92,
		SuggestedAction: "draft_refund_response",
		MappedAction:    "draft_refund_response",
		Source:          models.SourceAI,
		RawResponse:     `{"intent":"refund_request","confidence":0.92}`,
		CreatedAt:       time.Now(),
	}
	s.SetRequiredFields([]string{"order_id", "amount"})
	return &SuggestionBuilder{suggestion: s}
}

// WithID sets the suggestion ID
func (b *SuggestionBuilder) WithID(id uint) *SuggestionBuilder {
	b.suggestion.ID = id
	return b
}

// WithMessageID sets the classified message ID
func (b *SuggestionBuilder) WithMessageID(messageID uint) *SuggestionBuilder {
	b.suggestion.MessageID = messageID
	return b
}

// WithIntent sets the intent label
func (b *SuggestionBuilder) WithIntent(intent string) *SuggestionBuilder {
	b.suggestion.Intent = intent
	return b
}

// WithConfidence sets the classifier confidence
func (b *SuggestionBuilder) WithConfidence(confidence float64) *SuggestionBuilder {
	b.suggestion.Confidence = confidence
	return b
}

// WithSuggestedAction sets the action shown to the operator
func (b *SuggestionBuilder) WithSuggestedAction(action string) *SuggestionBuilder {
	b.suggestion.SuggestedAction = action
	return b
}

// WithSource sets the suggestion source
func (b *SuggestionBuilder) WithSource(source models.SuggestionSource) *SuggestionBuilder {
	b.suggestion.Source = source
	return b
}

// WithRequiredFields sets the fields a reply must mention
func (b *SuggestionBuilder) WithRequiredFields(fields []string) *SuggestionBuilder {
	b.suggestion.SetRequiredFields(fields)
	return b
}

// Build returns the constructed Suggestion
func (b *SuggestionBuilder) Build() *models.Suggestion {
	return &b.suggestion
}

// DecisionBuilder creates test Decision instances with fluent API
type DecisionBuilder struct {
	decision models.Decision
}

// NewDecisionBuilder creates a new DecisionBuilder with sensible defaults
func NewDecisionBuilder() *DecisionBuilder {
	return &DecisionBuilder{
		decision: models.Decision{
			ID:           1,
			SuggestionID: 1,
			Kind:         models.DecisionAccept,
			DecidedBy:    "operator@example.com",
			CreatedAt:    time.Now(),
		},
	}
}

// WithID sets the decision ID
func (b *DecisionBuilder) WithID(id uint) *DecisionBuilder {
	b.decision.ID = id
	return b
}

// WithSuggestionID sets the decided suggestion ID
func (b *DecisionBuilder) WithSuggestionID(suggestionID uint) *DecisionBuilder {
	b.decision.SuggestionID = suggestionID
	return b
}

// WithKind sets the decision kind
func (b *DecisionBuilder) WithKind(kind models.DecisionKind) *DecisionBuilder {
	b.decision.Kind = kind
	return b
}

// WithOverrideAction sets the substitute action for an override
func (b *DecisionBuilder) WithOverrideAction(action string) *DecisionBuilder {
	b.decision.OverrideAction = action
	return b
}

// Build returns the constructed Decision
func (b *DecisionBuilder) Build() *models.Decision {
	return &b.decision
}

// DraftBuilder creates test Draft instances with fluent API
type DraftBuilder struct {
	draft models.Draft
}

// NewDraftBuilder creates a new DraftBuilder with sensible defaults
func NewDraftBuilder() *DraftBuilder {
	now := time.Now()
	return &DraftBuilder{
		draft: models.Draft{
			ID:         1,
			DecisionID: 1,
			Subject:    "Re: Refund for order #4521",
			Body:       "Hi,\n\nThank you for reaching out. We are handling your request.\n",
			Status:     models.StatusDraft,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

// WithID sets the draft ID
func (b *DraftBuilder) WithID(id uint) *DraftBuilder {
	b.draft.ID = id
	return b
}

// WithDecisionID sets the originating decision ID
func (b *DraftBuilder) WithDecisionID(decisionID uint) *DraftBuilder {
	b.draft.DecisionID = decisionID
	return b
}

// WithSubject sets the draft subject
func (b *DraftBuilder) WithSubject(subject string) *DraftBuilder {
	b.draft.Subject = subject
	return b
}

// WithBody sets the draft body
func (b *DraftBuilder) WithBody(body string) *DraftBuilder {
	b.draft.Body = body
	return b
}

// Sent marks the draft as sent at the given time
func (b *DraftBuilder) Sent(at time.Time) *DraftBuilder {
	b.draft.Status = models.StatusSent
	b.draft.SentAt = &at
	return b
}

// Build returns the constructed Draft
func (b *DraftBuilder) Build() *models.Draft {
	return &b.draft
}

// SampleRefundPayload is a complete single-thread upload: one customer
// message that a classifier should label as a refund request.
const SampleRefundPayload = `{
  "id": "thread-refund-4521",
  "subject": "Refund for order #4521",
  "messages": [
    {
      "id": "msg-001",
      "sender": "alice@example.com",
      "body": "I would like a refund for order #4521, it arrived broken.",
      "timestamp": "2025-03-14T09:26:00Z"
    }
  ]
}`

// SampleMultiThreadPayload is a wrapper-object upload carrying two threads
const SampleMultiThreadPayload = `{
  "threads": [
    {
      "id": "thread-refund-4521",
      "subject": "Refund for order #4521",
      "messages": [
        {
          "id": "msg-001",
          "sender": "alice@example.com",
          "body": "I would like a refund for order #4521, it arrived broken.",
          "timestamp": "2025-03-14T09:26:00Z"
        }
      ]
    },
    {
      "id": "thread-shipping-77",
      "subject": "Where is my package?",
      "messages": [
        {
          "id": "msg-002",
          "sender": "bob@example.com",
          "body": "My tracking number has not updated in a week. Where is my package?",
          "timestamp": "2025-03-15T11:02:00Z"
        },
        {
          "id": "msg-003",
          "sender": "bob@example.com",
          "body": "Following up on my earlier message about the missing package.",
          "timestamp": "2025-03-17T08:45:00Z"
        }
      ]
    }
  ]
}`

// SampleInvalidPayload has a thread whose only message is missing a sender,
// so validation must reject the whole upload.
const SampleInvalidPayload = `{
  "id": "thread-bad",
  "subject": "Broken upload",
  "messages": [
    {
      "id": "msg-bad",
      "body": "No sender on this one."
    }
  ]
}`
