package dto

import (
	"time"

	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/services"
)

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	User UserDTO `json:"user"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Type          models.TaskType     `json:"type"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	StudyID       *uint64             `json:"study_id"`
	ProjectID     *uint64             `json:"project_id"`
	AssigneeID    *uint64             `json:"assignee_id"`
	DueDate       *time.Time          `json:"due_date"`
	CompletedAt   *time.Time          `json:"completed_at"`
	CompletedByID *uint64             `json:"completed_by_id"`
	CreatorID     uint64              `json:"creator_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Creator       *UserDTO            `json:"creator,omitempty"`
	Assignee      *UserDTO            `json:"assignee,omitempty"`
	Assignments   []TaskAssignmentDTO `json:"assignments,omitempty"`
}

// TaskMutationResponse is the response to every mutating task endpoint:
// the task plus its freshly propagated container progress. Progress
// fields are omitted for admin tasks.
type TaskMutationResponse struct {
	Task            TaskDTO  `json:"task"`
	StudyProgress   *float64 `json:"study_progress,omitempty"`
	ProjectProgress *float64 `json:"project_progress,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Type:          task.Type,
		Status:        task.Status,
		Priority:      task.Priority,
		StudyID:       task.StudyID,
		ProjectID:     task.ProjectID,
		AssigneeID:    task.AssigneeID,
		DueDate:       task.DueDate,
		CompletedAt:   task.CompletedAt,
		CompletedByID: task.CompletedByID,
		CreatorID:     task.CreatorID,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	if len(task.Assignments) > 0 {
		dto.Assignments = make([]TaskAssignmentDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignments[i] = TaskAssignmentDTO{
				User: ToUserDTO(assignment.User),
			}
		}
	}

	return dto
}

// ToTaskMutationResponse converts a service TaskResult to the wire shape
func ToTaskMutationResponse(result *services.TaskResult) TaskMutationResponse {
	return TaskMutationResponse{
		Task:            ToTaskDTO(*result.Task),
		StudyProgress:   result.StudyProgress,
		ProjectProgress: result.ProjectProgress,
	}
}
