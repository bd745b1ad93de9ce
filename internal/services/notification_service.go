package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yugawara/labtrack-api/internal/logger"
	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/push"
	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/gorm"
)

// pushTimeout bounds the best-effort delivery attempt so a slow transport
// never delays the caller's response.
const pushTimeout = 2 * time.Second

// NotificationService persists event notifications and pushes them over a
// best-effort transport. The persisted row is the source of truth: a push
// failure is logged and swallowed, and consumers reconcile by fetching
// persisted notifications on reconnect, deduplicating by notification ID.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	transport push.Transport
	log       *logger.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repository.NotificationRepository, transport push.Transport, log *logger.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		transport: transport,
		log:       log.With("service", "NotificationService"),
	}
}

// NotifyInput represents a notification to deliver
type NotifyInput struct {
	RecipientID uint64
	Category    models.NotificationCategory
	Title       string
	Message     string
	TaskID      *uint64
	RequestID   *uint64
}

// Notify persists the notification, then attempts push delivery. Must be
// called only after the triggering transaction has committed, so a
// rollback never produces a phantom notification.
func (s *NotificationService) Notify(input NotifyInput) (*models.Notification, error) {
	notification := &models.Notification{
		RecipientID: input.RecipientID,
		Category:    input.Category,
		Title:       input.Title,
		Message:     input.Message,
		TaskID:      input.TaskID,
		RequestID:   input.RequestID,
	}

	if err := s.notifRepo.Create(notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	msg := push.Message{
		ID:          notification.ID,
		RecipientID: notification.RecipientID,
		Category:    notification.Category,
		Title:       notification.Title,
		Message:     notification.Message,
		TaskID:      notification.TaskID,
		RequestID:   notification.RequestID,
		CreatedAt:   notification.CreatedAt,
	}
	if err := s.transport.Push(ctx, msg); err != nil {
		s.log.Warn("push delivery failed",
			"notification_id", notification.ID,
			"recipient_id", notification.RecipientID,
			"error", err,
		)
	}

	return notification, nil
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(recipientID uint64, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	return s.notifRepo.ListByRecipient(recipientID, unreadOnly, page, pageSize)
}

// MarkRead flips the read flag on the recipient's own row. Idempotent.
func (s *NotificationService) MarkRead(notificationID, userID uint64) error {
	if _, err := s.notifRepo.FindByID(notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to find notification: %w", err)
	}

	return s.notifRepo.MarkRead(notificationID, userID)
}

// IsUnread reports whether the notification is unread for the user
func (s *NotificationService) IsUnread(notificationID, userID uint64) (bool, error) {
	return s.notifRepo.IsUnread(notificationID, userID)
}
