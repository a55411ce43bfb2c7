package events

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSecureUpgrader_ValidOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000,http://example.com", nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	result := upgrader.CheckOrigin(req)
	assert.True(t, result)
}

func TestNewSecureUpgrader_InvalidOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000", nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://malicious.com")

	result := upgrader.CheckOrigin(req)
	assert.False(t, result)
}

func TestNewSecureUpgrader_EmptyOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000", nil)

	// Same-origin requests have empty Origin header
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	result := upgrader.CheckOrigin(req)
	assert.True(t, result)
}

func TestNewSecureUpgrader_DefaultOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("", nil)

	// Default should allow localhost:3000
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	result := upgrader.CheckOrigin(req)
	assert.True(t, result)
}

func TestNewSecureUpgrader_MultipleOrigins(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000, http://example.com, http://app.example.com", nil)

	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://localhost:3000", true},
		{"http://example.com", true},
		{"http://app.example.com", true},
		{"http://other.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Header.Set("Origin", tt.origin)

			result := upgrader.CheckOrigin(req)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDefaultUpgrader_AllowsAll(t *testing.T) {
	upgrader := DefaultUpgrader()

	origins := []string{
		"http://localhost:3000",
		"http://example.com",
		"http://malicious.com",
		"",
	}

	for _, origin := range origins {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}

			result := upgrader.CheckOrigin(req)
			assert.True(t, result)
		})
	}
}

func TestNewSecureUpgrader_CommaOnlyOrigins(t *testing.T) {
	upgrader := NewSecureUpgrader(",,,", nil)

	// Should default to localhost:3000 when all entries are empty
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	result := upgrader.CheckOrigin(req)
	assert.True(t, result)
}

func TestNewSecureUpgrader_TrimWhitespace(t *testing.T) {
	upgrader := NewSecureUpgrader("  http://localhost:3000  ,  http://example.com  ", nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://example.com")

	result := upgrader.CheckOrigin(req)
	assert.True(t, result)
}

func TestHub_NewHub(t *testing.T) {
	hub := NewHub(nil)

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.subscriptions)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestHub_NotifyWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil)

	// Start hub in goroutine
	go hub.Run()

	// This should not panic even with no subscribers
	hub.Notify(1, EventTypeSuggestion, map[string]interface{}{
		"suggestion_id": 42,
		"intent":        "refund_request",
	})
}
