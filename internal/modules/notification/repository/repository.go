package repository

import (
	"context"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InboxRepository reads and writes the bounded notification inbox stored on
// the user row. GetInbox always hits the database so each dispatch is a
// read-modify-write against current state, not a cached copy.
type InboxRepository interface {
	GetInbox(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	SaveInbox(ctx context.Context, userID uuid.UUID, inbox []entity.Notification) error
}

type inboxRepository struct {
	db *gorm.DB
}

func NewInboxRepository(db *gorm.DB) InboxRepository {
	return &inboxRepository{db: db}
}

func (r *inboxRepository) GetInbox(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Select("id", "notifications").First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return user.Notifications, nil
}

func (r *inboxRepository) SaveInbox(ctx context.Context, userID uuid.UUID, inbox []entity.Notification) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("notifications", inbox).Error
}
