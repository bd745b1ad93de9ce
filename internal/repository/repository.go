package repository

import (
	"time"

	"github.com/yugawara/labtrack-api/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// WithTx returns a repository bound to the given transaction.
	// A nil tx returns the receiver unchanged.
	WithTx(tx *gorm.DB) ProjectRepository

	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves non-deleted projects with pagination
	List(page, pageSize int) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// UpdateProgress persists the cached progress value
	UpdateProgress(id uint64, progress float64) error

	// SoftDelete soft deletes a project
	SoftDelete(id uint64) error
}

// StudyRepository defines the interface for study data access
type StudyRepository interface {
	WithTx(tx *gorm.DB) StudyRepository

	// Create creates a new study
	Create(study *models.Study) error

	// FindByID finds a study by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Study, error)

	// ListByProject lists non-deleted studies of a project
	ListByProject(projectID uint64) ([]models.Study, error)

	// Update updates a study
	Update(study *models.Study) error

	// UpdateProgress persists the cached progress value
	UpdateProgress(id uint64, progress float64) error

	// SoftDelete soft deletes a study
	SoftDelete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository

	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDUnscoped finds a task including soft-deleted rows
	FindByIDUnscoped(id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// SoftDelete soft deletes a task
	SoftDelete(id uint64) error

	// Restore clears the soft-delete marker
	Restore(id uint64) error

	// CountResearchTasks counts non-deleted research tasks of a study,
	// total and completed
	CountResearchTasks(studyID uint64) (total int64, completed int64, err error)

	// ReplaceAssignments deletes all assignment rows for the task and
	// bulk-inserts the given set
	ReplaceAssignments(taskID uint64, userIDs []uint64) error

	// ListAssignments lists the assignment rows of a task
	ListAssignments(taskID uint64) ([]models.TaskAssignment, error)

	// HasAssignment reports whether an assignment row exists
	HasAssignment(taskID, userID uint64) (bool, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	StudyID        *uint64
	ProjectID      *uint64
	Type           *models.TaskType
	Status         *models.TaskStatus
	CreatorID      *uint64
	AssignedUserID *uint64
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
	Page           int
	PageSize       int
}

// RequestRepository defines the interface for task request data access
type RequestRepository interface {
	WithTx(tx *gorm.DB) RequestRepository

	// Create creates a new request
	Create(request *models.TaskRequest) error

	// FindByID finds a request by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TaskRequest, error)

	// HasPending reports whether a pending request exists for
	// (taskID, requesterID, type)
	HasPending(taskID, requesterID uint64, reqType models.RequestType) (bool, error)

	// List retrieves requests with filtering and pagination
	List(filter RequestFilter) ([]models.TaskRequest, int64, error)

	// Update updates a request
	Update(request *models.TaskRequest) error
}

// RequestFilter holds filtering options for listing requests
type RequestFilter struct {
	TaskID      *uint64
	RequesterID *uint64
	Status      *models.RequestStatus
	Page        int
	PageSize    int
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(notification *models.Notification) error

	// FindByID finds a notification by ID
	FindByID(id uint64) (*models.Notification, error)

	// ListByRecipient lists a user's notifications, newest first
	ListByRecipient(recipientID uint64, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error)

	// MarkRead sets the read flag on the recipient's own row; a no-op when
	// already read or not owned by the recipient
	MarkRead(id, recipientID uint64) error

	// IsUnread reports whether the notification is unread for the user
	IsUnread(id, recipientID uint64) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository

	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// CountEligibleByIDs counts how many of the given user IDs resolve to
	// active, assignee-eligible users
	CountEligibleByIDs(userIDs []uint64) (int64, error)
}
