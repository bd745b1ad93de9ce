package services

import (
	"errors"
	"fmt"

	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/gorm"
)

// AssignmentService maintains the set of users holding a task. The legacy
// single-holder field on the task predates the assignment table and is
// still referenced by requests and filters, so both representations are
// rewritten together at every mutation point. Invariant: the legacy field
// is the first element of the holder set, or NULL when the set is empty.
type AssignmentService struct {
	db       *gorm.DB
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(db *gorm.DB, taskRepo repository.TaskRepository, userRepo repository.UserRepository) *AssignmentService {
	return &AssignmentService{
		db:       db,
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// SetAssignees replaces the holder set of a task. Manager only. Every id
// must resolve to an active, assignee-eligible user. An empty set clears
// both representations. A pending task receiving its first holders is
// auto-promoted to in_progress. The tx parameter joins an open
// transaction; nil opens one.
func (s *AssignmentService) SetAssignees(tx *gorm.DB, taskID uint64, userIDs []uint64, actor *models.User) ([]models.TaskAssignment, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRoleRequired
	}

	userIDs = uniqueUint64(userIDs)

	run := func(tx *gorm.DB) error {
		taskRepo := s.taskRepo.WithTx(tx)

		if len(userIDs) > 0 {
			count, err := s.userRepo.WithTx(tx).CountEligibleByIDs(userIDs)
			if err != nil {
				return fmt.Errorf("failed to verify assignees: %w", err)
			}
			if int(count) != len(userIDs) {
				return ErrInvalidAssignee
			}
		}

		task, err := taskRepo.FindByID(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if err := taskRepo.ReplaceAssignments(taskID, userIDs); err != nil {
			return fmt.Errorf("failed to replace assignments: %w", err)
		}

		if len(userIDs) > 0 {
			first := userIDs[0]
			task.AssigneeID = &first
			if task.Status == models.TaskStatusPending {
				task.Status = models.TaskStatusInProgress
			}
		} else {
			task.AssigneeID = nil
		}

		if err := taskRepo.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		return nil
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.db.Transaction(run)
	}
	if err != nil {
		return nil, err
	}

	return s.taskRepo.WithTx(tx).ListAssignments(taskID)
}

// IsHolder reports whether the user currently holds the task, via either
// the legacy field or the assignment set.
func (s *AssignmentService) IsHolder(taskID, userID uint64) (bool, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTaskNotFound
		}
		return false, fmt.Errorf("failed to find task: %w", err)
	}

	if task.AssigneeID != nil && *task.AssigneeID == userID {
		return true, nil
	}

	return s.taskRepo.HasAssignment(taskID, userID)
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
