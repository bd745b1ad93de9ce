package models

import "time"

type NotificationCategory string

const (
	NotificationRequestSubmitted NotificationCategory = "request_submitted"
	NotificationRequestApproved  NotificationCategory = "request_approved"
	NotificationRequestRejected  NotificationCategory = "request_rejected"
)

// Notification is the durable record of an event signal. Rows are created
// once and never deleted; only the read flag mutates.
type Notification struct {
	ID          uint64               `gorm:"primarykey" json:"id"`
	RecipientID uint64               `gorm:"not null;index" json:"recipient_id"`
	Category    NotificationCategory `gorm:"type:varchar(50);not null" json:"category"`
	Title       string               `gorm:"type:varchar(255);not null" json:"title"`
	Message     string               `gorm:"type:text" json:"message"`
	TaskID      *uint64              `gorm:"index" json:"task_id"`
	RequestID   *uint64              `gorm:"index" json:"request_id"`
	Read        bool                 `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time            `json:"created_at"`

	// Relations
	Recipient User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}
