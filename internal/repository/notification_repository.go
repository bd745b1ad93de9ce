package repository

import (
	"github.com/yugawara/labtrack-api/internal/database"
	"github.com/yugawara/labtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create creates a new notification
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(id uint64) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByRecipient lists a user's notifications, newest first
func (r *GormNotificationRepository) ListByRecipient(recipientID uint64, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	var notifications []models.Notification

	query := r.db.Model(&models.Notification{}).
		Where("notifications.recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("notifications.read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("notifications.created_at DESC, notifications.id DESC").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead sets the read flag on the recipient's own row. Idempotent: a row
// that is already read, or not owned by the recipient, is left untouched.
func (r *GormNotificationRepository) MarkRead(id, recipientID uint64) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true).Error
}

// IsUnread reports whether the notification is unread for the user
func (r *GormNotificationRepository) IsUnread(id, recipientID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read = ?", id, recipientID, false).
		Count(&count).Error
	return count > 0, err
}
