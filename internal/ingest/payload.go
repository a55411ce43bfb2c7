// Package ingest parses and validates thread upload payloads before they
// touch the store. A payload is JSON: a single thread object, a bare list,
// or {"threads": [...]}.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/replydesk/replydesk-backend/internal/errors"
)

// Payload is a normalized upload: always a list of threads
type Payload struct {
	Threads []ThreadInput `json:"threads"`
}

// ThreadInput is one thread object from an upload
type ThreadInput struct {
	ID       string         `json:"id,omitempty"`
	Subject  string         `json:"subject"`
	Messages []MessageInput `json:"messages"`
}

// MessageInput is one message object from an upload. Raw optionally holds an
// RFC 822 message source; when present it is parsed and its sender, subject
// and body take precedence over the flat fields.
type MessageInput struct {
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient,omitempty"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp,omitempty"`
	Raw       string `json:"raw,omitempty"`

	// parsedSubject is filled from Raw and may serve as a thread
	// subject fallback
	parsedSubject string
}

// Parse decodes an upload payload in any of its accepted shapes
func Parse(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Validationf("failed to read payload: %v", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, apperrors.Validationf("empty payload")
	}

	// Bare list of threads
	if strings.HasPrefix(trimmed, "[") {
		var threads []ThreadInput
		if err := json.Unmarshal(data, &threads); err != nil {
			return nil, apperrors.Validationf("invalid JSON payload: %v", err)
		}
		return &Payload{Threads: threads}, nil
	}

	// Object: either a wrapper or a single thread
	var probe struct {
		Threads *json.RawMessage `json:"threads"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, apperrors.Validationf("invalid JSON payload: %v", err)
	}

	if probe.Threads != nil {
		var payload Payload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, apperrors.Validationf("invalid JSON payload: %v", err)
		}
		return &payload, nil
	}

	var single ThreadInput
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, apperrors.Validationf("invalid JSON payload: %v", err)
	}
	return &Payload{Threads: []ThreadInput{single}}, nil
}

// Validate checks the whole payload before anything is persisted, so a bad
// thread entry aborts the operation without partial writes.
func (p *Payload) Validate() error {
	if len(p.Threads) == 0 {
		return apperrors.Validationf("payload contains no threads")
	}
	for i := range p.Threads {
		if err := p.Threads[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single thread entry
func (t *ThreadInput) Validate() error {
	if len(t.Messages) == 0 {
		return apperrors.Validationf("thread %q has no messages", t.label())
	}
	for i := range t.Messages {
		m := &t.Messages[i]
		if m.Raw == "" && m.Sender == "" {
			return apperrors.Validationf("thread %q message %d is missing a sender", t.label(), i)
		}
		if m.Raw == "" && m.Body == "" {
			return apperrors.Validationf("thread %q message %d has an empty body", t.label(), i)
		}
		if m.Timestamp != "" {
			if _, err := parseTimestamp(m.Timestamp); err != nil {
				return apperrors.Validationf("thread %q message %d has an unparseable timestamp %q", t.label(), i, m.Timestamp)
			}
		}
	}
	return nil
}

func (t *ThreadInput) label() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Subject
}

// Normalize expands raw RFC 822 sources into the flat message fields and
// fills the thread subject from the first parsed message when absent. Must
// run after Validate and before DedupKey is read.
func (t *ThreadInput) Normalize() error {
	for i := range t.Messages {
		m := &t.Messages[i]
		if m.Raw == "" {
			continue
		}

		parsed, err := ParseRawMessage(strings.NewReader(m.Raw))
		if err != nil {
			return apperrors.Validationf("thread %q message %d has an unparseable raw source: %v", t.label(), i, err)
		}

		if parsed.SenderEmail != "" {
			m.Sender = parsed.SenderEmail
		}
		if parsed.BodyText != "" {
			m.Body = parsed.BodyText
		}
		m.parsedSubject = parsed.Subject

		if m.Sender == "" {
			return apperrors.Validationf("thread %q message %d raw source has no sender", t.label(), i)
		}
		if m.Body == "" {
			return apperrors.Validationf("thread %q message %d raw source has no body", t.label(), i)
		}
	}

	if t.Subject == "" {
		for i := range t.Messages {
			if s := t.Messages[i].parsedSubject; s != "" {
				t.Subject = s
				break
			}
		}
	}

	return nil
}

// DedupKey identifies a message within its thread across re-uploads: the
// external id when the payload carries one, else a content hash of
// sender, timestamp and body.
func (m *MessageInput) DedupKey() string {
	if m.ID != "" {
		return "ext:" + m.ID
	}
	sum := sha256.Sum256([]byte(m.Sender + "\x00" + m.Timestamp + "\x00" + m.Body))
	return hex.EncodeToString(sum[:])
}

// Time returns the message timestamp, defaulting to now when absent.
// Validate has already rejected unparseable values.
func (m *MessageInput) Time() time.Time {
	if m.Timestamp == "" {
		return time.Now().UTC()
	}
	ts, err := parseTimestamp(m.Timestamp)
	if err != nil {
		return time.Now().UTC()
	}
	return ts
}

// parseTimestamp accepts RFC 3339 and a common space-separated fallback
func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", raw)
}
