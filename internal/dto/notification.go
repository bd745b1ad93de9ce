package dto

import (
	"time"

	"github.com/yugawara/labtrack-api/internal/models"
)

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        uint64                      `json:"id"`
	Category  models.NotificationCategory `json:"category"`
	Title     string                      `json:"title"`
	Message   string                      `json:"message"`
	TaskID    *uint64                     `json:"task_id,omitempty"`
	RequestID *uint64                     `json:"request_id,omitempty"`
	Read      bool                        `json:"read"`
	CreatedAt time.Time                   `json:"created_at"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(notification models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        notification.ID,
		Category:  notification.Category,
		Title:     notification.Title,
		Message:   notification.Message,
		TaskID:    notification.TaskID,
		RequestID: notification.RequestID,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}
