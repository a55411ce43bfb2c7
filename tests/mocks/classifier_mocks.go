package mocks

import (
	"context"

	"github.com/replydesk/replydesk-backend/internal/classifier"
	"github.com/stretchr/testify/mock"
)

// MockClassifier implements classifier.Classifier
type MockClassifier struct {
	mock.Mock
}

// Classify classifies a message into an intent
func (m *MockClassifier) Classify(ctx context.Context, in classifier.Input) (*classifier.Result, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*classifier.Result), args.Error(1)
}

// MockReplyComposer implements classifier.ReplyComposer
type MockReplyComposer struct {
	mock.Mock
}

// ComposeReply drafts a reply body for a suggested action
func (m *MockReplyComposer) ComposeReply(ctx context.Context, action, originalBody string) (string, error) {
	args := m.Called(ctx, action, originalBody)
	return args.String(0), args.Error(1)
}
