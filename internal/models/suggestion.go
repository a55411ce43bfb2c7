package models

import (
	"encoding/json"
	"time"
)

// SuggestionSource records where a suggestion came from
type SuggestionSource string

const (
	// SourceAI marks suggestions produced by the external classifier
	SourceAI SuggestionSource = "ai"
	// SourceKeyword marks suggestions produced by the local keyword classifier
	SourceKeyword SuggestionSource = "keyword"
	// SourceFallback marks degraded suggestions recorded after a classification failure
	SourceFallback SuggestionSource = "fallback"
)

// IntentUnclassified is recorded when the classifier returned unusable output
const IntentUnclassified = "unclassified"

// Suggestion is an append-only record of one classifier run against a message.
// Rows are never updated; corrections are new rows. RawResponse holds the
// provider output verbatim for audit and is never parsed after storage.
type Suggestion struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	MessageID       uint             `gorm:"not null;index" json:"message_id"`
	Intent          string           `gorm:"not null;size:255" json:"intent"`
	Confidence      float64          `gorm:"not null" json:"confidence"`
	SuggestedAction string           `gorm:"not null;size:255" json:"suggested_action"`
	MappedAction    string           `gorm:"size:255" json:"mapped_action,omitempty"`
	RequiredFields  string           `gorm:"type:text" json:"-"`
	FollowUp        string           `gorm:"type:text" json:"follow_up,omitempty"`
	Source          SuggestionSource `gorm:"not null;size:32;default:ai" json:"source"`
	RawResponse     string           `gorm:"type:text" json:"raw_response,omitempty"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Message   Message    `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	Decisions []Decision `gorm:"foreignKey:SuggestionID;constraint:OnDelete:CASCADE" json:"decisions,omitempty"`
}

// TableName returns the table name for Suggestion
func (Suggestion) TableName() string {
	return "suggestions"
}

// SetRequiredFields stores the field names as a JSON array
func (s *Suggestion) SetRequiredFields(fields []string) {
	if len(fields) == 0 {
		s.RequiredFields = ""
		return
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	s.RequiredFields = string(data)
}

// RequiredFieldList decodes the stored JSON array of field names
func (s *Suggestion) RequiredFieldList() []string {
	if s.RequiredFields == "" {
		return nil
	}
	var fields []string
	if err := json.Unmarshal([]byte(s.RequiredFields), &fields); err != nil {
		return nil
	}
	return fields
}

// MarshalJSON includes the decoded required_fields list in API responses
func (s Suggestion) MarshalJSON() ([]byte, error) {
	type alias Suggestion
	return json.Marshal(struct {
		alias
		RequiredFields []string `json:"required_fields"`
	}{
		alias:          alias(s),
		RequiredFields: s.RequiredFieldList(),
	})
}
