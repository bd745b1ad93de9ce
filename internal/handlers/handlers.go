package handlers

import (
	apierrors "github.com/yugawara/labtrack-api/internal/errors"
	"github.com/yugawara/labtrack-api/internal/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy to HTTP statuses.
// Validation, permission, and not-found failures are expected conditions;
// anything else is a store failure surfaced as a 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		apierrors.BadRequest(c, err.Error())
	case services.IsPermission(err):
		apierrors.Forbidden(c, err.Error())
	case services.IsNotFound(err):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
