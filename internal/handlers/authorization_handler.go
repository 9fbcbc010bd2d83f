package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stepguard/approval-api/internal/models"
	"github.com/stepguard/approval-api/internal/service"
	"github.com/stepguard/approval-api/internal/utils"
	pkgutils "github.com/stepguard/approval-api/pkg/utils"
)

// AuthorizationHandler handles the anonymous client side of the workflow:
// creating an authorization request and polling its status.
type AuthorizationHandler struct {
	authorizationService *service.AuthorizationService
}

// NewAuthorizationHandler creates a new authorization handler instance
func NewAuthorizationHandler(authorizationService *service.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{
		authorizationService: authorizationService,
	}
}

// CreateAuthorization handles POST /authorizations
func (h *AuthorizationHandler) CreateAuthorization(c *gin.Context) {
	var request models.AuthorizationCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	meta := models.ClientMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	response, svcErr := h.authorizationService.CreateRequest(c.Request.Context(), &request, meta)
	if svcErr != nil {
		utils.SendServiceError(c, svcErr)
		return
	}

	utils.SendCreatedResponse(c, response)
}

// CheckAuthorizationStatus handles GET /authorizations/:requestId/status
func (h *AuthorizationHandler) CheckAuthorizationStatus(c *gin.Context) {
	requestID, err := pkgutils.ParseRequestID(c.Param("requestId"))
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	sessionID := c.Query("sessionId")
	if sessionID == "" {
		utils.SendValidationError(c, "sessionId query parameter is required")
		return
	}

	response, svcErr := h.authorizationService.CheckStatus(c.Request.Context(), requestID, sessionID)
	if svcErr != nil {
		utils.SendServiceError(c, svcErr)
		return
	}

	utils.SendOKResponse(c, response)
}
