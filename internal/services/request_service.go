package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yugawara/labtrack-api/internal/logger"
	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/gorm"
)

// RequestService implements the request/approval workflow: a holder asks
// for a privileged action, a manager approves or rejects it, and the
// outcome is recorded atomically with its side effect. Notifications are
// dispatched only after the transaction commits.
type RequestService struct {
	db          *gorm.DB
	requestRepo repository.RequestRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	assignments *AssignmentService
	tasks       *TaskService
	notifier    *NotificationService
	log         *logger.Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(db *gorm.DB, requestRepo repository.RequestRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository, assignments *AssignmentService, tasks *TaskService, notifier *NotificationService, log *logger.Logger) *RequestService {
	return &RequestService{
		db:          db,
		requestRepo: requestRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		assignments: assignments,
		tasks:       tasks,
		notifier:    notifier,
		log:         log.With("service", "RequestService"),
	}
}

// RequestResult carries the updated request and, for approvals with a task
// side effect, the updated task.
type RequestResult struct {
	Request *models.TaskRequest
	Task    *models.Task
}

// RequestCompletion files a completion request for a task the requester
// currently holds. At most one pending completion request may exist per
// (task, requester). The task's creator is notified.
func (s *RequestService) RequestCompletion(taskID uint64, requester *models.User, notes string) (*models.TaskRequest, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}

	holder, err := s.assignments.IsHolder(taskID, requester.ID)
	if err != nil {
		return nil, err
	}
	if !holder {
		return nil, ErrNotTaskHolder
	}

	switch task.Status {
	case models.TaskStatusCompleted:
		return nil, ErrTaskAlreadyCompleted
	case models.TaskStatusCancelled:
		return nil, ErrTaskCancelled
	}

	request := &models.TaskRequest{
		TaskID:      taskID,
		RequesterID: requester.ID,
		Type:        models.RequestTypeCompletion,
		Status:      models.RequestStatusPending,
		Notes:       notes,
	}

	if err := s.createRequest(request); err != nil {
		return nil, err
	}

	s.notifyCreator(task, request, fmt.Sprintf(
		"%s requested completion of task %q", requester.DisplayName, task.Title))

	return request, nil
}

// RequestReassignment files a request to hand the task over to another
// user. The target must be a different, active, assignee-eligible user.
func (s *RequestService) RequestReassignment(taskID uint64, requester *models.User, targetUserID uint64, notes string) (*models.TaskRequest, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}

	holder, err := s.assignments.IsHolder(taskID, requester.ID)
	if err != nil {
		return nil, err
	}
	if !holder {
		return nil, ErrNotTaskHolder
	}

	if targetUserID == requester.ID {
		return nil, ErrSelfReassignment
	}

	target, err := s.userRepo.FindByID(targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find target user: %w", err)
	}
	if !target.AssigneeEligible() {
		return nil, ErrInvalidAssignee
	}

	request := &models.TaskRequest{
		TaskID:       taskID,
		RequesterID:  requester.ID,
		Type:         models.RequestTypeReassignment,
		TargetUserID: &targetUserID,
		Status:       models.RequestStatusPending,
		Notes:        notes,
	}

	if err := s.createRequest(request); err != nil {
		return nil, err
	}

	s.notifyCreator(task, request, fmt.Sprintf(
		"%s requested reassignment of task %q to %s",
		requester.DisplayName, task.Title, target.DisplayName))

	return request, nil
}

// Approve marks a pending request approved and applies its side effect in
// the same transaction. A completion request whose task was completed
// through another path in the interim still approves cleanly, with an
// explanatory note; a cancelled task fails the approval. The requester is
// notified after commit.
func (s *RequestService) Approve(requestID uint64, reviewer *models.User) (*RequestResult, error) {
	if !reviewer.IsManager() {
		return nil, ErrManagerRoleRequired
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	result := &RequestResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		task, err := s.taskRepo.WithTx(tx).FindByID(request.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		switch request.Type {
		case models.RequestTypeCompletion:
			switch task.Status {
			case models.TaskStatusCompleted:
				// Completed through another path while the request was in
				// flight. The approval still succeeds; erroring here would
				// surface a confusing failure to the reviewer.
				request.Notes = appendNote(request.Notes,
					"task was already completed at approval time")
				result.Task = task
			case models.TaskStatusCancelled:
				return ErrTaskCancelled
			default:
				taskResult, err := s.tasks.Complete(tx, task.ID, reviewer)
				if err != nil {
					return err
				}
				result.Task = taskResult.Task
			}
		case models.RequestTypeReassignment:
			if _, err := s.assignments.SetAssignees(tx, task.ID, []uint64{*request.TargetUserID}, reviewer); err != nil {
				return err
			}
			updated, err := s.taskRepo.WithTx(tx).FindByID(task.ID)
			if err != nil {
				return fmt.Errorf("failed to reload task: %w", err)
			}
			result.Task = updated
		default:
			return NewValidationError("unknown request type")
		}

		now := time.Now()
		request.Status = models.RequestStatusApproved
		request.ReviewerID = &reviewer.ID
		request.ReviewedAt = &now

		if err := s.requestRepo.WithTx(tx).Update(request); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyRequester(request, models.NotificationRequestApproved,
		"Request approved",
		fmt.Sprintf("Your %s request for task %d was approved by %s",
			request.Type, request.TaskID, reviewer.DisplayName))

	result.Request = request
	return result, nil
}

// Reject marks a pending request rejected. No side effect on the task.
// The requester is notified.
func (s *RequestService) Reject(requestID uint64, reviewer *models.User, notes string) (*RequestResult, error) {
	if !reviewer.IsManager() {
		return nil, ErrManagerRoleRequired
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	now := time.Now()
	request.Status = models.RequestStatusRejected
	request.ReviewerID = &reviewer.ID
	request.ReviewedAt = &now
	if notes != "" {
		request.Notes = appendNote(request.Notes, notes)
	}

	if err := s.requestRepo.Update(request); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	s.notifyRequester(request, models.NotificationRequestRejected,
		"Request rejected",
		fmt.Sprintf("Your %s request for task %d was rejected by %s",
			request.Type, request.TaskID, reviewer.DisplayName))

	return &RequestResult{Request: request}, nil
}

// List returns requests matching the filter
func (s *RequestService) List(filter repository.RequestFilter) ([]models.TaskRequest, int64, error) {
	return s.requestRepo.List(filter)
}

func (s *RequestService) loadTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *RequestService) loadRequest(requestID uint64) (*models.TaskRequest, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	return request, nil
}

// createRequest enforces the one-pending-per-(task, requester, type) rule
// and inserts the row in one transaction.
func (s *RequestService) createRequest(request *models.TaskRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		requestRepo := s.requestRepo.WithTx(tx)

		pending, err := requestRepo.HasPending(request.TaskID, request.RequesterID, request.Type)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending {
			return ErrDuplicatePendingRequest
		}

		if err := requestRepo.Create(request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return nil
	})
}

func (s *RequestService) notifyCreator(task *models.Task, request *models.TaskRequest, message string) {
	_, err := s.notifier.Notify(NotifyInput{
		RecipientID: task.CreatorID,
		Category:    models.NotificationRequestSubmitted,
		Title:       "New request",
		Message:     message,
		TaskID:      &task.ID,
		RequestID:   &request.ID,
	})
	if err != nil {
		s.log.Error("failed to persist request notification",
			"request_id", request.ID, "error", err)
	}
}

func (s *RequestService) notifyRequester(request *models.TaskRequest, category models.NotificationCategory, title, message string) {
	_, err := s.notifier.Notify(NotifyInput{
		RecipientID: request.RequesterID,
		Category:    category,
		Title:       title,
		Message:     message,
		TaskID:      &request.TaskID,
		RequestID:   &request.ID,
	})
	if err != nil {
		s.log.Error("failed to persist outcome notification",
			"request_id", request.ID, "error", err)
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
