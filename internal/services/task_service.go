package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService enforces the task state machine and role-based mutation
// rules. Every status-affecting write commits in the same transaction as
// the progress propagation it triggers; the two are never observably
// split.
type TaskService struct {
	db          *gorm.DB
	taskRepo    repository.TaskRepository
	studyRepo   repository.StudyRepository
	projectRepo repository.ProjectRepository
	assignments *AssignmentService
	progress    *ProgressService
}

// NewTaskService creates a new TaskService
func NewTaskService(db *gorm.DB, taskRepo repository.TaskRepository, studyRepo repository.StudyRepository, projectRepo repository.ProjectRepository, assignments *AssignmentService, progress *ProgressService) *TaskService {
	return &TaskService{
		db:          db,
		taskRepo:    taskRepo,
		studyRepo:   studyRepo,
		projectRepo: projectRepo,
		assignments: assignments,
		progress:    progress,
	}
}

// TaskResult carries a mutated task plus the freshly propagated container
// progress. The progress pointers are nil for admin tasks.
type TaskResult struct {
	Task            *models.Task
	StudyProgress   *float64
	ProjectProgress *float64
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Type        models.TaskType
	Priority    models.TaskPriority
	StudyID     *uint64
	ProjectID   *uint64
	DueDate     *time.Time
}

// UpdateTaskInput represents input for updating a task. Nil pointers leave
// the field untouched.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// Create creates a task. Manager only. Research tasks require an existing
// study; admin tasks may optionally name an existing project.
func (s *TaskService) Create(input CreateTaskInput, actor *models.User) (*TaskResult, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRoleRequired
	}
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.Type == "" {
		input.Type = models.TaskTypeResearch
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Status:      models.TaskStatusPending,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatorID:   actor.ID,
	}

	switch input.Type {
	case models.TaskTypeResearch:
		if input.StudyID == nil {
			return nil, ErrStudyRequired
		}
		if _, err := s.studyRepo.FindByID(*input.StudyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudyNotFound
			}
			return nil, fmt.Errorf("failed to find study: %w", err)
		}
		task.StudyID = input.StudyID
	case models.TaskTypeAdmin:
		if input.ProjectID != nil {
			if _, err := s.projectRepo.FindByID(*input.ProjectID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrProjectNotFound
				}
				return nil, fmt.Errorf("failed to find project: %w", err)
			}
			task.ProjectID = input.ProjectID
		}
	default:
		return nil, NewValidationError("unknown task type")
	}

	result := &TaskResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return s.propagateIfResearch(tx, task, result)
	})
	if err != nil {
		return nil, err
	}

	result.Task = task
	return result, nil
}

// Update applies a partial update. Managers may change any field,
// including a direct transition to completed. Holders may change only
// title, description, and status, and may not set completed themselves.
func (s *TaskService) Update(taskID uint64, input UpdateTaskInput, actor *models.User) (*TaskResult, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !actor.IsManager() {
		holder, err := s.assignments.IsHolder(taskID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !holder {
			return nil, ErrNotTaskHolder
		}
		if input.Priority != nil || input.DueDate != nil || input.ClearDueDate {
			return nil, ErrFieldNotAllowed
		}
		if input.Status != nil && *input.Status == models.TaskStatusCompleted {
			return nil, ErrCompleteViaRequest
		}
	}

	if task.Terminal() {
		return nil, ErrTaskTerminal
	}

	statusChanged := false
	if input.Status != nil && *input.Status != task.Status {
		if !validTransition(task.Status, *input.Status) {
			return nil, ErrInvalidTransition
		}
		task.Status = *input.Status
		statusChanged = true

		if task.Status == models.TaskStatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
			task.CompletedByID = &actor.ID
		}
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	result := &TaskResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if statusChanged {
			return s.propagateIfResearch(tx, task, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Task = task
	return result, nil
}

// Complete marks a task completed and stamps the completion actor and
// timestamp. Allowed for managers and current holders. The tx parameter
// joins an open transaction (the approval path); nil opens one.
func (s *TaskService) Complete(tx *gorm.DB, taskID uint64, actor *models.User) (*TaskResult, error) {
	task, err := s.taskRepo.WithTx(tx).FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !actor.IsManager() {
		holder, err := s.assignments.IsHolder(taskID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !holder {
			return nil, ErrNotTaskHolder
		}
	}

	switch task.Status {
	case models.TaskStatusCompleted:
		return nil, ErrTaskAlreadyCompleted
	case models.TaskStatusCancelled:
		return nil, ErrTaskCancelled
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.CompletedAt = &now
	task.CompletedByID = &actor.ID

	result := &TaskResult{}
	run := func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Update(task); err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		return s.propagateIfResearch(tx, task, result)
	}

	if tx != nil {
		err = run(tx)
	} else {
		err = s.db.Transaction(run)
	}
	if err != nil {
		return nil, err
	}

	result.Task = task
	return result, nil
}

// SoftDelete flips the soft-delete marker. Manager only. The container is
// captured before the flip so progress excludes the deleted row.
func (s *TaskService) SoftDelete(taskID uint64, actor *models.User) (*TaskResult, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRoleRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	result := &TaskResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).SoftDelete(taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return s.propagateIfResearch(tx, task, result)
	})
	if err != nil {
		return nil, err
	}

	result.Task = task
	return result, nil
}

// Restore clears the soft-delete marker. Manager only.
func (s *TaskService) Restore(taskID uint64, actor *models.User) (*TaskResult, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRoleRequired
	}

	task, err := s.taskRepo.FindByIDUnscoped(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !task.DeletedAt.Valid {
		return nil, NewValidationError("task is not deleted")
	}

	result := &TaskResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Restore(taskID); err != nil {
			return fmt.Errorf("failed to restore task: %w", err)
		}
		return s.propagateIfResearch(tx, task, result)
	})
	if err != nil {
		return nil, err
	}

	task.DeletedAt = gorm.DeletedAt{}
	result.Task = task
	return result, nil
}

// propagateIfResearch recomputes container progress for research tasks.
// Admin-task mutations never touch progress.
func (s *TaskService) propagateIfResearch(tx *gorm.DB, task *models.Task, result *TaskResult) error {
	if task.Type != models.TaskTypeResearch || task.StudyID == nil {
		return nil
	}
	studyProgress, projectProgress, err := s.progress.Propagate(tx, *task.StudyID)
	if err != nil {
		return err
	}
	result.StudyProgress = &studyProgress
	result.ProjectProgress = &projectProgress
	return nil
}

// validTransition reports whether the status change is allowed through
// the normal update path. Terminal states are handled by the caller.
func validTransition(from, to models.TaskStatus) bool {
	switch from {
	case models.TaskStatusPending:
		return to == models.TaskStatusInProgress ||
			to == models.TaskStatusCompleted ||
			to == models.TaskStatusCancelled
	case models.TaskStatusInProgress:
		return to == models.TaskStatusCompleted ||
			to == models.TaskStatusCancelled
	default:
		return false
	}
}
