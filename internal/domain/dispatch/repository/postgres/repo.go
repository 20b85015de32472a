package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	dispatcherrors "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/errors"
)

// Repository implements deps.MessageRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL message repository
func NewRepository(db *gorm.DB) deps.MessageRepository {
	return &Repository{db: db}
}

// Create inserts a QUEUED ledger row
func (r *Repository) Create(ctx context.Context, msg *entities.OutboundMessage) (*entities.OutboundMessage, error) {
	model := entities.FromEntity(msg)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to create outbound message: %w", err)
	}

	return model.ToEntity(), nil
}

// GetByID returns one ledger row
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.OutboundMessage, error) {
	var model entities.OutboundMessageModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dispatcherrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get outbound message: %w", err)
	}

	return model.ToEntity(), nil
}

// MarkSent records the terminal SENT write. The status guard makes the
// terminal transition idempotent against races with operator cancellation.
func (r *Repository) MarkSent(ctx context.Context, id uint, providerMessageID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.OutboundMessageModel{}).
		Where("id = ? AND status = ?", id, string(entities.StatusQueued)).
		Updates(map[string]interface{}{
			"status":              string(entities.StatusSent),
			"provider_message_id": providerMessageID,
			"sent_at":             sentAt,
			"error_message":       "",
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark message sent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return dispatcherrors.ErrMessageNotFound
	}
	return nil
}

// MarkFailed records the terminal FAILED write and increments retry_count
func (r *Repository) MarkFailed(ctx context.Context, id uint, errorMessage string, failedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.OutboundMessageModel{}).
		Where("id = ? AND status = ?", id, string(entities.StatusQueued)).
		Updates(map[string]interface{}{
			"status":        string(entities.StatusFailed),
			"error_message": errorMessage,
			"failed_at":     failedAt,
			"retry_count":   gorm.Expr("retry_count + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark message failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return dispatcherrors.ErrMessageNotFound
	}
	return nil
}

// MarkCancelled cancels a still-QUEUED row
func (r *Repository) MarkCancelled(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.OutboundMessageModel{}).
		Where("id = ? AND status = ?", id, string(entities.StatusQueued)).
		Update("status", string(entities.StatusCancelled))
	if result.Error != nil {
		return fmt.Errorf("failed to cancel message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return dispatcherrors.ErrNotCancellable
	}
	return nil
}

// Requeue flips a retryable FAILED row back to QUEUED
func (r *Repository) Requeue(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.OutboundMessageModel{}).
		Where("id = ? AND status = ? AND retry_count < ?", id, string(entities.StatusFailed), entities.MaxRetries).
		Updates(map[string]interface{}{
			"status":    string(entities.StatusQueued),
			"failed_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to requeue message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return dispatcherrors.ErrNotRetryable
	}
	return nil
}

// ListByUser pages the ledger for the history view, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uint, status string, limit, offset int) ([]entities.OutboundMessage, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.OutboundMessageModel{}).
		Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var models []entities.OutboundMessageModel
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]entities.OutboundMessage, len(models))
	for i, model := range models {
		messages[i] = *model.ToEntity()
	}

	return messages, total, nil
}
