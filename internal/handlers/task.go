package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yugawara/labtrack-api/internal/dto"
	apierrors "github.com/yugawara/labtrack-api/internal/errors"
	"github.com/yugawara/labtrack-api/internal/middleware"
	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/repository"
	"github.com/yugawara/labtrack-api/internal/services"
	"github.com/yugawara/labtrack-api/internal/utils"
)

type TaskHandler struct {
	taskService       *services.TaskService
	assignmentService *services.AssignmentService
	taskRepo          repository.TaskRepository
}

func NewTaskHandler(taskService *services.TaskService, assignmentService *services.AssignmentService, taskRepo repository.TaskRepository) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		assignmentService: assignmentService,
		taskRepo:          taskRepo,
	}
}

// ListTasks returns tasks matching the query filters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	if _, exists := middleware.GetActor(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if studyIDStr := c.Query("study_id"); studyIDStr != "" {
		studyID, err := strconv.ParseUint(studyIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid study_id")
			return
		}
		filter.StudyID = &studyID
	}
	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		filter.ProjectID = &projectID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		filter.Status = &status
	}
	if typeStr := c.Query("type"); typeStr != "" {
		taskType := models.TaskType(typeStr)
		filter.Type = &taskType
	}
	if assignedStr := c.Query("assigned_to"); assignedStr != "" {
		assignedTo, err := strconv.ParseUint(assignedStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return
		}
		filter.AssignedUserID = &assignedTo
	}

	tasks, total, err := h.taskRepo.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a task with its relations
func (h *TaskHandler) GetTask(c *gin.Context) {
	if _, exists := middleware.GetActor(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskRepo.FindByID(taskID, "Creator", "Assignee", "Assignments", "Assignments.User")
	if err != nil {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Type        string     `json:"type"`
		Priority    string     `json:"priority"`
		StudyID     *uint64    `json:"study_id"`
		ProjectID   *uint64    `json:"project_id"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	result, err := h.taskService.Create(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.TaskType(req.Type),
		Priority:    models.TaskPriority(req.Priority),
		StudyID:     req.StudyID,
		ProjectID:   req.ProjectID,
		DueDate:     req.DueDate,
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskMutationResponse(result))
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	var input services.UpdateTaskInput
	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if statusStr, ok := rawReq["status"].(string); ok {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if priorityStr, ok := rawReq["priority"].(string); ok {
		priority := models.TaskPriority(priorityStr)
		input.Priority = &priority
	}
	if _, ok := rawReq["due_date"]; ok {
		if rawReq["due_date"] == nil {
			input.ClearDueDate = true
		} else if dueDateStr, ok := rawReq["due_date"].(string); ok {
			parsedTime, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = &parsedTime
		}
	}

	result, err := h.taskService.Update(taskID, input, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskMutationResponse(result))
}

// CompleteTask marks a task completed
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.taskService.Complete(nil, taskID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskMutationResponse(result))
}

// DeleteTask soft deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.taskService.SoftDelete(taskID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskMutationResponse(result))
}

// RestoreTask clears the soft-delete marker on a task
func (h *TaskHandler) RestoreTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.taskService.Restore(taskID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskMutationResponse(result))
}

// SetAssignees replaces the holder set of a task
func (h *TaskHandler) SetAssignees(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type SetAssigneesRequest struct {
		UserIDs []uint64 `json:"user_ids"`
	}

	var req SetAssigneesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	assignments, err := h.assignmentService.SetAssignees(nil, taskID, req.UserIDs, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.TaskAssignmentDTO, len(assignments))
	for i, assignment := range assignments {
		items[i] = dto.TaskAssignmentDTO{User: dto.ToUserDTO(assignment.User)}
	}

	c.JSON(http.StatusOK, gin.H{"assignments": items})
}
