package models

import (
	"time"
)

// Thread represents an ingested email conversation
type Thread struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null;size:255" json:"external_id"`
	Subject    string    `gorm:"size:998" json:"subject"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Messages []Message `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName returns the table name for Thread
func (Thread) TableName() string {
	return "threads"
}

// ThreadSummary is a lightweight version for list views and ingest results
type ThreadSummary struct {
	ID           uint      `json:"id"`
	ExternalID   string    `json:"external_id"`
	Subject      string    `json:"subject"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}
