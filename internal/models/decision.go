package models

import (
	"time"
)

// DecisionKind is the kind of human decision taken on a suggestion
type DecisionKind string

const (
	// DecisionAccept means the human accepted the suggested action as-is
	DecisionAccept DecisionKind = "accept"
	// DecisionOverride means the human disagreed, optionally substituting an action
	DecisionOverride DecisionKind = "override"
)

// IsValid checks whether the decision kind is one of the known values
func (k DecisionKind) IsValid() bool {
	return k == DecisionAccept || k == DecisionOverride
}

// Decision is an immutable record of a human accept/override against a
// suggestion. The store permits multiple decisions per suggestion; picking a
// winner is the caller's concern.
type Decision struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	SuggestionID   uint         `gorm:"not null;index" json:"suggestion_id"`
	Kind           DecisionKind `gorm:"not null;size:32" json:"kind"`
	OverrideAction string       `gorm:"size:255" json:"override_action,omitempty"`
	Notes          string       `gorm:"type:text" json:"notes,omitempty"`
	DecidedBy      string       `gorm:"size:255" json:"decided_by,omitempty"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Suggestion Suggestion `gorm:"foreignKey:SuggestionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Decision
func (Decision) TableName() string {
	return "decisions"
}
