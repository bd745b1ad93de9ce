package dto

import (
	"time"

	"github.com/yugawara/labtrack-api/internal/models"
)

// RequestDTO represents a task request in API responses
type RequestDTO struct {
	ID           uint64               `json:"id"`
	TaskID       uint64               `json:"task_id"`
	RequesterID  uint64               `json:"requester_id"`
	Type         models.RequestType   `json:"type"`
	TargetUserID *uint64              `json:"target_user_id,omitempty"`
	Status       models.RequestStatus `json:"status"`
	Notes        string               `json:"notes"`
	ReviewerID   *uint64              `json:"reviewer_id,omitempty"`
	ReviewedAt   *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	Requester    *UserDTO             `json:"requester,omitempty"`
	Task         *TaskDTO             `json:"task,omitempty"`
}

// RequestReviewResponse is the response to approve/reject: the updated
// request and, where the approval mutated the task, the updated task.
type RequestReviewResponse struct {
	Request RequestDTO `json:"request"`
	Task    *TaskDTO   `json:"task,omitempty"`
}

// ToRequestDTO converts a TaskRequest model to RequestDTO
func ToRequestDTO(request models.TaskRequest) RequestDTO {
	dto := RequestDTO{
		ID:           request.ID,
		TaskID:       request.TaskID,
		RequesterID:  request.RequesterID,
		Type:         request.Type,
		TargetUserID: request.TargetUserID,
		Status:       request.Status,
		Notes:        request.Notes,
		ReviewerID:   request.ReviewerID,
		ReviewedAt:   request.ReviewedAt,
		CreatedAt:    request.CreatedAt,
	}

	if request.Requester.ID != 0 {
		requester := ToUserDTO(request.Requester)
		dto.Requester = &requester
	}

	if request.Task.ID != 0 {
		task := ToTaskDTO(request.Task)
		dto.Task = &task
	}

	return dto
}
