package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/entities"
	sessionerrors "github.com/HoceineEl/madrasa-messaging/internal/domain/session/errors"
)

// Repository implements deps.SessionRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL session repository
func NewRepository(db *gorm.DB) deps.SessionRepository {
	return &Repository{db: db}
}

// Create inserts a new session row. The unique index on user_id enforces the
// one-session-per-user invariant at the database level.
func (r *Repository) Create(ctx context.Context, session *entities.Session) (*entities.Session, error) {
	model := entities.FromEntity(session)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, sessionerrors.ErrSessionExists
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return model.ToEntity(), nil
}

// GetByUserID returns the session owned by the user
func (r *Repository) GetByUserID(ctx context.Context, userID uint) (*entities.Session, error) {
	var model entities.SessionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessionerrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return model.ToEntity(), nil
}

// Update overwrites the stored session state
func (r *Repository) Update(ctx context.Context, session *entities.Session) error {
	model := entities.FromEntity(session)

	result := r.db.WithContext(ctx).
		Model(&entities.SessionModel{}).
		Where("id = ?", session.ID).
		Select("status", "qr_kind", "qr_data", "provider_session_data", "connected_at", "last_activity_at").
		Updates(map[string]interface{}{
			"status":                model.Status,
			"qr_kind":               model.QRKind,
			"qr_data":               model.QRData,
			"provider_session_data": model.ProviderSessionData,
			"connected_at":          model.ConnectedAt,
			"last_activity_at":      model.LastActivityAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return sessionerrors.ErrSessionNotFound
	}

	return nil
}

// Delete removes the session row; outbound_messages cascade via FK
func (r *Repository) Delete(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entities.SessionModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return sessionerrors.ErrSessionNotFound
	}

	return nil
}
