package mocks

import (
	"sync"

	"github.com/replydesk/replydesk-backend/internal/events"
)

// NotificationRecord records one notification sent through the mock notifier
type NotificationRecord struct {
	ThreadID  uint
	EventType events.EventType
	Payload   interface{}
}

// MockNotifier implements events.Notifier and records everything it is asked
// to publish, so tests can assert on the event stream without a running hub.
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []NotificationRecord
}

// NewMockNotifier creates a new MockNotifier instance
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Notifications: make([]NotificationRecord, 0),
	}
}

// Notify records a notification
func (m *MockNotifier) Notify(threadID uint, eventType events.EventType, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, NotificationRecord{
		ThreadID:  threadID,
		EventType: eventType,
		Payload:   payload,
	})
}

// GetNotifications returns all recorded notifications
func (m *MockNotifier) GetNotifications() []NotificationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotificationRecord, len(m.Notifications))
	copy(out, m.Notifications)
	return out
}

// ClearNotifications clears all recorded notifications
func (m *MockNotifier) ClearNotifications() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = make([]NotificationRecord, 0)
}
