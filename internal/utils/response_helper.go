package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stepguard/approval-api/internal/models"
	"github.com/stepguard/approval-api/internal/serviceerror"
)

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendUnauthorizedError sends a 401 Unauthorized error
func SendUnauthorizedError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, message, "")
}

// SendForbiddenError sends a 403 Forbidden error
func SendForbiddenError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusForbidden, models.ErrCodeForbidden, message, "")
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendConflictError sends a 409 Conflict error
func SendConflictError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusConflict, models.ErrCodeConflict, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendServiceError maps a structured service error to its HTTP response
func SendServiceError(c *gin.Context, svcErr *serviceerror.ServiceError) {
	switch svcErr.Code {
	case serviceerror.RequestNotFoundError.Code:
		SendNotFoundError(c, svcErr.ErrorDescription)
	case serviceerror.ForbiddenError.Code:
		SendForbiddenError(c, svcErr.ErrorDescription)
	case serviceerror.AlreadyDecidedError.Code:
		SendConflictError(c, svcErr.ErrorDescription)
	case serviceerror.UnauthorizedError.Code:
		SendUnauthorizedError(c, svcErr.ErrorDescription)
	case serviceerror.ValidationError.Code:
		SendValidationError(c, svcErr.ErrorDescription)
	case serviceerror.InvalidRequestError.Code:
		SendBadRequestError(c, "Invalid request", svcErr.ErrorDescription)
	default:
		SendInternalServerError(c, "Internal server error", svcErr.ErrorDescription)
	}
}

// GetAdminIDFromContext extracts the authenticated admin identity from context
func GetAdminIDFromContext(c *gin.Context) string {
	adminID, exists := c.Get("adminID")
	if !exists {
		return ""
	}
	return adminID.(string)
}
