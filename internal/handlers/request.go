package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yugawara/labtrack-api/internal/dto"
	apierrors "github.com/yugawara/labtrack-api/internal/errors"
	"github.com/yugawara/labtrack-api/internal/middleware"
	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/repository"
	"github.com/yugawara/labtrack-api/internal/services"
	"github.com/yugawara/labtrack-api/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// RequestCompletion files a completion request for a task
func (h *RequestHandler) RequestCompletion(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CompletionRequest struct {
		Notes string `json:"notes"`
	}

	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		apierrors.BadRequest(c, "")
		return
	}

	request, err := h.requestService.RequestCompletion(taskID, actor, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRequestDTO(*request))
}

// RequestReassignment files a reassignment request for a task
func (h *RequestHandler) RequestReassignment(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ReassignmentRequest struct {
		TargetUserID uint64 `json:"target_user_id" binding:"required"`
		Notes        string `json:"notes"`
	}

	var req ReassignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	request, err := h.requestService.RequestReassignment(taskID, actor, req.TargetUserID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRequestDTO(*request))
}

// ListRequests returns requests matching the query filters
func (h *RequestHandler) ListRequests(c *gin.Context) {
	if _, exists := middleware.GetActor(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.RequestFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.RequestStatus(statusStr)
		filter.Status = &status
	}

	requests, total, err := h.requestService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.RequestDTO, len(requests))
	for i, request := range requests {
		items[i] = dto.ToRequestDTO(request)
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ApproveRequest approves a pending request and applies its side effect
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.requestService.Approve(requestID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := dto.RequestReviewResponse{
		Request: dto.ToRequestDTO(*result.Request),
	}
	if result.Task != nil {
		task := dto.ToTaskDTO(*result.Task)
		response.Task = &task
	}

	c.JSON(http.StatusOK, response)
}

// RejectRequest rejects a pending request
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type RejectRequest struct {
		Notes string `json:"notes"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		apierrors.BadRequest(c, "")
		return
	}

	result, err := h.requestService.Reject(requestID, actor, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RequestReviewResponse{
		Request: dto.ToRequestDTO(*result.Request),
	})
}
