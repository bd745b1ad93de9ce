package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskType string

const (
	TaskTypeResearch TaskType = "research"
	TaskTypeAdmin    TaskType = "admin"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Type        TaskType     `gorm:"type:varchar(20);not null;default:'research'" json:"type"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`

	// Container: StudyID is required for research tasks, ProjectID is
	// optional and used only by admin tasks.
	StudyID   *uint64 `gorm:"index" json:"study_id"`
	ProjectID *uint64 `gorm:"index" json:"project_id"`

	// Legacy single-holder field, kept in sync with Assignments.
	AssigneeID *uint64 `gorm:"index" json:"assignee_id"`

	DueDate       *time.Time `json:"due_date"`
	CompletedAt   *time.Time `json:"completed_at"`
	CompletedByID *uint64    `json:"completed_by_id"`

	CreatorID uint64         `gorm:"not null;index" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator     User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Study       *Study           `gorm:"foreignKey:StudyID" json:"study,omitempty"`
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee    *User            `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

// Terminal reports whether the task is in a terminal state.
func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}
