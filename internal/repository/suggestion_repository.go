package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/replydesk/replydesk-backend/internal/models"
	"gorm.io/gorm"
)

// SuggestionRepository defines the interface for the suggestion ledger.
// The ledger is append-only: rows are created and read, never updated.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, id uint) (*models.Suggestion, error)
	ListByMessage(ctx context.Context, messageID uint) ([]models.Suggestion, error)
	HasAcceptedDecision(ctx context.Context, messageID uint) (bool, error)
}

// suggestionRepository implements SuggestionRepository using GORM
type suggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository creates a new SuggestionRepository instance
func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

// Create appends a suggestion to the ledger
func (r *suggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	result := r.db.WithContext(ctx).Create(suggestion)
	if result.Error != nil {
		return fmt.Errorf("failed to create suggestion: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a suggestion by its ID
func (r *suggestionRepository) GetByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	result := r.db.WithContext(ctx).First(&suggestion, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get suggestion by ID: %w", result.Error)
	}
	return &suggestion, nil
}

// ListByMessage retrieves every suggestion recorded for a message, in
// creation order
func (r *suggestionRepository) ListByMessage(ctx context.Context, messageID uint) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion
	result := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC, id ASC").
		Find(&suggestions)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", result.Error)
	}
	return suggestions, nil
}

// HasAcceptedDecision reports whether any suggestion for the message has an
// accepted decision. Used to skip re-classification on re-upload.
func (r *suggestionRepository) HasAcceptedDecision(ctx context.Context, messageID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Decision{}).
		Joins("JOIN suggestions ON suggestions.id = decisions.suggestion_id").
		Where("suggestions.message_id = ? AND decisions.kind = ?", messageID, models.DecisionAccept).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check for accepted decision: %w", result.Error)
	}
	return count > 0, nil
}
