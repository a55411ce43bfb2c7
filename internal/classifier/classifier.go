// Package classifier wraps intent classification behind a small port so the
// rest of the system never sees a provider SDK. A classifier run either
// yields a normalized Result or a typed failure that still carries the raw
// provider payload, so the audit trail survives malformed output.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

// Input is the message under classification plus minimal thread context
type Input struct {
	// Body of the message being classified
	Body string
	// ThreadSubject of the owning thread
	ThreadSubject string
	// MessageCount in the thread so far
	MessageCount int
	// PriorBodies holds earlier message bodies in the thread, oldest first
	PriorBodies []string
}

// Result is the normalized output of a successful classification
type Result struct {
	// Intent label, provider vocabulary
	Intent string
	// Confidence in [0,1]
	Confidence float64
	// FollowUp is an optional question to ask the customer
	FollowUp string
	// Raw provider output, verbatim, for audit
	Raw []byte
}

// Classifier classifies a message into an intent. Implementations do not
// retry; retry policy belongs to the caller. The call may be slow and must
// never be made while holding a store transaction.
type Classifier interface {
	Classify(ctx context.Context, in Input) (*Result, error)
}

// ReplyComposer drafts an initial reply body for a suggested action
type ReplyComposer interface {
	ComposeReply(ctx context.Context, action, originalBody string) (string, error)
}

// MalformedResponseError reports provider output that could not be parsed
// into a Result. Raw holds the payload verbatim so callers can persist it.
type MalformedResponseError struct {
	Raw []byte
	Err error
}

// Error implements the error interface
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed classifier response: %v", e.Err)
}

// Unwrap returns the underlying parse error
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// RawPayload extracts the raw provider payload from a classification error,
// falling back to the error text when no payload was captured.
func RawPayload(err error) []byte {
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) && len(malformed.Raw) > 0 {
		return malformed.Raw
	}
	return []byte(err.Error())
}

// clampConfidence forces a provider-reported confidence into [0,1]
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
