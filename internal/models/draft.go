package models

import (
	"time"
)

// DraftStatus is the lifecycle state of a draft
type DraftStatus string

const (
	// StatusDraft is the initial, editable state
	StatusDraft DraftStatus = "draft"
	// StatusSent is the terminal state; no transition leads out of it
	StatusSent DraftStatus = "sent"
)

// IsValid checks whether the status is one of the known values
func (s DraftStatus) IsValid() bool {
	return s == StatusDraft || s == StatusSent
}

// Draft is the editable reply artifact originating from a decision. At most
// one draft exists per decision (enforced by a unique index). Subject and
// body are mutable only while Status is draft; the draft→sent transition is
// one-way and SentAt is written exactly once.
type Draft struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	DecisionID uint        `gorm:"not null;uniqueIndex" json:"decision_id"`
	Subject    string      `gorm:"size:998" json:"subject"`
	Body       string      `gorm:"type:text" json:"body"`
	Status     DraftStatus `gorm:"not null;size:32;default:draft" json:"status"`
	SentAt     *time.Time  `json:"sent_at,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Decision Decision `gorm:"foreignKey:DecisionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Draft
func (Draft) TableName() string {
	return "drafts"
}
