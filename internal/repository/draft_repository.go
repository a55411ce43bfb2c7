package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/replydesk/replydesk-backend/internal/models"
	"gorm.io/gorm"
)

// DraftRepository defines the interface for draft data operations
type DraftRepository interface {
	Create(ctx context.Context, draft *models.Draft) error
	GetByID(ctx context.Context, id uint) (*models.Draft, error)
	GetByDecisionID(ctx context.Context, decisionID uint) (*models.Draft, error)
	ListByStatus(ctx context.Context, status models.DraftStatus, limit, offset int) ([]models.Draft, int64, error)
	UpdateContent(ctx context.Context, id uint, subject, body *string) (*models.Draft, error)
	MarkSent(ctx context.Context, id uint) (*models.Draft, error)
}

// draftRepository implements DraftRepository using GORM
type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new DraftRepository instance
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Create persists a new draft. A decision holds at most one draft.
func (r *draftRepository) Create(ctx context.Context, draft *models.Draft) error {
	result := r.db.WithContext(ctx).Create(draft)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create draft: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a draft by its ID
func (r *draftRepository) GetByID(ctx context.Context, id uint) (*models.Draft, error) {
	var draft models.Draft
	result := r.db.WithContext(ctx).First(&draft, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft by ID: %w", result.Error)
	}
	return &draft, nil
}

// GetByDecisionID retrieves the draft authored for a decision
func (r *draftRepository) GetByDecisionID(ctx context.Context, decisionID uint) (*models.Draft, error) {
	var draft models.Draft
	result := r.db.WithContext(ctx).Where("decision_id = ?", decisionID).First(&draft)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft by decision ID: %w", result.Error)
	}
	return &draft, nil
}

// ListByStatus retrieves drafts filtered by status with pagination.
// An empty status returns drafts in every state.
func (r *draftRepository) ListByStatus(ctx context.Context, status models.DraftStatus, limit, offset int) ([]models.Draft, int64, error) {
	var drafts []models.Draft
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Draft{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	result := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&drafts)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", result.Error)
	}
	return drafts, total, nil
}

// UpdateContent applies a partial edit to a draft's subject and/or body.
// Only drafts still in the draft state are editable; the status guard is
// part of the UPDATE predicate so a concurrent send cannot race the edit.
func (r *draftRepository) UpdateContent(ctx context.Context, id uint, subject, body *string) (*models.Draft, error) {
	updates := map[string]interface{}{}
	if subject != nil {
		updates["subject"] = *subject
	}
	if body != nil {
		updates["body"] = *body
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		result := r.db.WithContext(ctx).
			Model(&models.Draft{}).
			Where("id = ? AND status = ?", id, models.StatusDraft).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update draft: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, r.classifyMiss(ctx, id)
		}
	}

	return r.GetByID(ctx, id)
}

// MarkSent transitions a draft from draft to sent. The transition happens
// at most once: a compare-and-set on status guarantees sent_at is written
// exactly once and never overwritten by a repeated send.
func (r *draftRepository) MarkSent(ctx context.Context, id uint) (*models.Draft, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("id = ? AND status = ?", id, models.StatusDraft).
		Updates(map[string]interface{}{
			"status":     models.StatusSent,
			"sent_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark draft sent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, r.classifyMiss(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// classifyMiss distinguishes a missing draft from one already sent after a
// zero-row conditional update.
func (r *draftRepository) classifyMiss(ctx context.Context, id uint) error {
	var draft models.Draft
	result := r.db.WithContext(ctx).First(&draft, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to inspect draft: %w", result.Error)
	}
	if draft.Status == models.StatusSent {
		return ErrDraftSent
	}
	return ErrNotFound
}
