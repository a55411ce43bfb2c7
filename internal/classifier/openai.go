package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const classifyPrompt = `You are an email triage assistant. Analyze the following customer message and respond with a single JSON object containing:
- intent: string (snake_case label such as refund_request, interested, not_interested, cancel_request, escalation)
- confidence: number between 0 and 1 (be conservative)
- follow_up_question: string (one concise question to ask the customer if more information is needed, else empty)

Thread subject: %s
Messages in thread so far: %d
%s
Message:
%s

Respond only with the JSON object and nothing else.`

const composePrompt = `You write concise, clear email replies. The agreed action is: %q.
The original customer message is:
'''%s'''
Write a professional reply that accomplishes the action. Return only the email body text.`

// intentResponse is the JSON shape requested from the model
type intentResponse struct {
	Intent           string  `json:"intent"`
	Confidence       float64 `json:"confidence"`
	FollowUpQuestion string  `json:"follow_up_question"`
}

// OpenAIClassifier classifies messages with an OpenAI chat model
type OpenAIClassifier struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	maxBodySize int
	logger      *slog.Logger
}

// NewOpenAIClassifier creates an OpenAIClassifier
func NewOpenAIClassifier(apiKey, modelName string, logger *slog.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		modelName:   modelName,
		maxTokens:   512,
		maxBodySize: 16 * 1024,
		logger:      logger,
	}
}

// Classify sends the message to the model and normalizes its JSON answer.
// Unparseable output is returned as a MalformedResponseError carrying the
// raw response text.
func (c *OpenAIClassifier) Classify(ctx context.Context, in Input) (*Result, error) {
	prompt := fmt.Sprintf(classifyPrompt, in.ThreadSubject, in.MessageCount, c.priorContext(in.PriorBodies), c.truncateBody(in.Body))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email triage assistant. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Err: fmt.Errorf("empty choice list")}
	}

	responseText := resp.Choices[0].Message.Content

	parsed, err := parseIntentResponse(responseText)
	if err != nil {
		c.logger.Warn("unparseable classifier response",
			slog.String("model", c.modelName),
			slog.Any("error", err))
		return nil, &MalformedResponseError{Raw: []byte(responseText), Err: err}
	}

	return &Result{
		Intent:     parsed.Intent,
		Confidence: clampConfidence(parsed.Confidence),
		FollowUp:   parsed.FollowUpQuestion,
		Raw:        []byte(responseText),
	}, nil
}

// ComposeReply generates an initial draft body for the agreed action
func (c *OpenAIClassifier) ComposeReply(ctx context.Context, action, originalBody string) (string, error) {
	prompt := fmt.Sprintf(composePrompt, action, c.truncateBody(originalBody))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("reply composition failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("reply composition returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// priorContext renders earlier thread messages for the prompt, most recent
// last, capped to the last three so the prompt stays small.
func (c *OpenAIClassifier) priorContext(bodies []string) string {
	if len(bodies) == 0 {
		return ""
	}
	if len(bodies) > 3 {
		bodies = bodies[len(bodies)-3:]
	}
	var b strings.Builder
	b.WriteString("\nEarlier messages in the thread:\n")
	for _, body := range bodies {
		b.WriteString("'''")
		b.WriteString(c.truncateBody(body))
		b.WriteString("'''\n")
	}
	return b.String()
}

// truncateBody caps the message body sent to the provider
func (c *OpenAIClassifier) truncateBody(body string) string {
	if c.maxBodySize <= 0 || len(body) <= c.maxBodySize {
		return body
	}
	return body[:c.maxBodySize] + "\n[... content truncated ...]"
}

// parseIntentResponse decodes the model's JSON, salvaging a JSON object
// embedded in surrounding prose when needed.
func parseIntentResponse(text string) (*intentResponse, error) {
	var parsed intentResponse
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return validateIntentResponse(&parsed)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response as JSON: %w", err)
	}
	return validateIntentResponse(&parsed)
}

func validateIntentResponse(parsed *intentResponse) (*intentResponse, error) {
	if parsed.Intent == "" {
		return nil, fmt.Errorf("response missing intent")
	}
	return parsed, nil
}
