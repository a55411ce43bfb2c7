package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/replydesk/replydesk-backend/internal/models"
	"gorm.io/gorm"
)

// UpsertResult reports what an ingest upsert did. Messages holds the stored
// rows for every message in the payload, in payload order, whether it was
// just created or already present.
type UpsertResult struct {
	Thread      *models.Thread
	Messages    []models.Message
	NewMessages int
}

// ThreadRepository defines the interface for thread and message data access
type ThreadRepository interface {
	Upsert(ctx context.Context, thread *models.Thread, messages []models.Message) (*UpsertResult, error)
	GetByID(ctx context.Context, id uint) (*models.Thread, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Thread, error)
	List(ctx context.Context, limit, offset int) ([]models.ThreadSummary, int64, error)
	Delete(ctx context.Context, id uint) error
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	CountMessages(ctx context.Context, threadID uint) (int64, error)
}

// threadRepository implements ThreadRepository using GORM
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository instance
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// Upsert creates or updates a thread and appends messages not seen before,
// all in one transaction. Threads match on ExternalID; messages match on
// (thread_id, dedup_key), which makes re-uploading the same payload a no-op.
func (r *threadRepository) Upsert(ctx context.Context, thread *models.Thread, messages []models.Message) (*UpsertResult, error) {
	result := &UpsertResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Thread
		err := tx.Where("external_id = ?", thread.ExternalID).First(&existing).Error
		switch {
		case err == nil:
			// Mutable metadata follows the latest upload
			if thread.Subject != "" && thread.Subject != existing.Subject {
				if err := tx.Model(&existing).Update("subject", thread.Subject).Error; err != nil {
					return fmt.Errorf("failed to update thread subject: %w", err)
				}
				existing.Subject = thread.Subject
			}
			*thread = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(thread).Error; err != nil {
				return fmt.Errorf("failed to create thread: %w", err)
			}
		default:
			return fmt.Errorf("failed to look up thread: %w", err)
		}

		for i := range messages {
			messages[i].ThreadID = thread.ID

			var stored models.Message
			err := tx.Where("thread_id = ? AND dedup_key = ?", thread.ID, messages[i].DedupKey).First(&stored).Error
			switch {
			case err == nil:
				result.Messages = append(result.Messages, stored)
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&messages[i]).Error; err != nil {
					return fmt.Errorf("failed to create message: %w", err)
				}
				result.Messages = append(result.Messages, messages[i])
				result.NewMessages++
			default:
				return fmt.Errorf("failed to look up message: %w", err)
			}
		}

		result.Thread = thread
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetByID retrieves a thread with its messages in arrival order
func (r *threadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	result := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.timestamp ASC, messages.id ASC")
		}).
		First(&thread, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread by ID: %w", result.Error)
	}
	return &thread, nil
}

// GetByExternalID retrieves a thread by its external identifier
func (r *threadRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Thread, error) {
	var thread models.Thread
	result := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&thread)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread by external ID: %w", result.Error)
	}
	return &thread, nil
}

// List retrieves thread summaries with pagination, newest first
func (r *threadRepository) List(ctx context.Context, limit, offset int) ([]models.ThreadSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Thread{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count threads: %w", err)
	}

	var results []models.ThreadSummary
	query := `
		SELECT
			t.id,
			t.external_id,
			t.subject,
			t.created_at,
			COALESCE((SELECT COUNT(*) FROM messages m WHERE m.thread_id = t.id), 0) as message_count
		FROM threads t
		ORDER BY t.created_at DESC
		LIMIT ? OFFSET ?
	`
	if err := r.db.WithContext(ctx).Raw(query, limit, offset).Scan(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list threads: %w", err)
	}

	return results, total, nil
}

// Delete removes a thread and, via cascade, its messages, suggestions,
// decisions and drafts
func (r *threadRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Thread{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete thread: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMessage retrieves a single message by its ID
func (r *threadRepository) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// CountMessages counts the messages stored for a thread
func (r *threadRepository) CountMessages(ctx context.Context, threadID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("thread_id = ?", threadID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count messages: %w", result.Error)
	}
	return count, nil
}
