package models

import "time"

type RequestType string

const (
	RequestTypeCompletion   RequestType = "completion"
	RequestTypeReassignment RequestType = "reassignment"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// TaskRequest is a delegated privileged action: a holder asks a manager to
// complete or reassign a task on their behalf.
type TaskRequest struct {
	ID           uint64        `gorm:"primarykey" json:"id"`
	TaskID       uint64        `gorm:"not null;index" json:"task_id"`
	RequesterID  uint64        `gorm:"not null;index" json:"requester_id"`
	Type         RequestType   `gorm:"type:varchar(20);not null" json:"type"`
	TargetUserID *uint64       `json:"target_user_id"`
	Status       RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes        string        `gorm:"type:text" json:"notes"`
	ReviewerID   *uint64       `json:"reviewer_id"`
	ReviewedAt   *time.Time    `json:"reviewed_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Relations
	Task       Task  `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Requester  User  `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	TargetUser *User `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
	Reviewer   *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}
