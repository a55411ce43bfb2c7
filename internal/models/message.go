package models

import (
	"time"
)

// Message represents a single email message within a thread. Messages are
// immutable once stored; re-uploads of the same thread are deduplicated by
// (thread_id, dedup_key).
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"not null;index;uniqueIndex:idx_messages_thread_dedup" json:"thread_id"`
	DedupKey  string    `gorm:"not null;size:128;uniqueIndex:idx_messages_thread_dedup" json:"-"`
	Sender    string    `gorm:"not null;size:255" json:"sender"`
	Recipient string    `gorm:"size:255" json:"recipient,omitempty"`
	Body      string    `gorm:"type:text" json:"body"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Thread      Thread       `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
	Suggestions []Suggestion `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"suggestions,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}
