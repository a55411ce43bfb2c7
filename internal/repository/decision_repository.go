package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/replydesk/replydesk-backend/internal/models"
	"gorm.io/gorm"
)

// DecisionRepository defines the interface for decision data operations
type DecisionRepository interface {
	Create(ctx context.Context, decision *models.Decision) error
	CreateWithDraft(ctx context.Context, decision *models.Decision, draft *models.Draft) error
	GetByID(ctx context.Context, id uint) (*models.Decision, error)
	ListBySuggestion(ctx context.Context, suggestionID uint) ([]models.Decision, error)
}

// decisionRepository implements DecisionRepository using GORM
type decisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new DecisionRepository instance
func NewDecisionRepository(db *gorm.DB) DecisionRepository {
	return &decisionRepository{db: db}
}

// Create records a decision without an accompanying draft
func (r *decisionRepository) Create(ctx context.Context, decision *models.Decision) error {
	result := r.db.WithContext(ctx).Create(decision)
	if result.Error != nil {
		return fmt.Errorf("failed to create decision: %w", result.Error)
	}
	return nil
}

// CreateWithDraft records a decision and its draft in a single transaction.
// Either both rows exist afterwards or neither does.
func (r *decisionRepository) CreateWithDraft(ctx context.Context, decision *models.Decision, draft *models.Draft) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(decision).Error; err != nil {
			return fmt.Errorf("failed to create decision: %w", err)
		}
		draft.DecisionID = decision.ID
		if err := tx.Create(draft).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateEntry
			}
			return fmt.Errorf("failed to create draft: %w", err)
		}
		return nil
	})
	return err
}

// GetByID retrieves a decision by its ID
func (r *decisionRepository) GetByID(ctx context.Context, id uint) (*models.Decision, error) {
	var decision models.Decision
	result := r.db.WithContext(ctx).First(&decision, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get decision by ID: %w", result.Error)
	}
	return &decision, nil
}

// ListBySuggestion retrieves all decisions recorded against a suggestion,
// oldest first. The latest row is the operative decision.
func (r *decisionRepository) ListBySuggestion(ctx context.Context, suggestionID uint) ([]models.Decision, error) {
	var decisions []models.Decision
	result := r.db.WithContext(ctx).
		Where("suggestion_id = ?", suggestionID).
		Order("created_at ASC, id ASC").
		Find(&decisions)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", result.Error)
	}
	return decisions, nil
}
