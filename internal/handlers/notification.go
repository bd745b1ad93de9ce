package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yugawara/labtrack-api/internal/dto"
	apierrors "github.com/yugawara/labtrack-api/internal/errors"
	"github.com/yugawara/labtrack-api/internal/middleware"
	"github.com/yugawara/labtrack-api/internal/services"
	"github.com/yugawara/labtrack-api/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the actor's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.List(actor.ID, unreadOnly, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.NotificationDTO, len(notifications))
	for i, notification := range notifications {
		items[i] = dto.ToNotificationDTO(notification)
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// MarkNotificationRead flips the read flag on the actor's notification
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(notificationID, actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
