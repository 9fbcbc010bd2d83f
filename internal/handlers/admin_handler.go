package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stepguard/approval-api/internal/models"
	"github.com/stepguard/approval-api/internal/service"
	"github.com/stepguard/approval-api/internal/utils"
	pkgutils "github.com/stepguard/approval-api/pkg/utils"
)

// AdminHandler handles the admin review surface: listing the request queue,
// recording decisions and inspecting aggregated activity.
type AdminHandler struct {
	authorizationService *service.AuthorizationService
	activityService      *service.ActivityService
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(authorizationService *service.AuthorizationService, activityService *service.ActivityService) *AdminHandler {
	return &AdminHandler{
		authorizationService: authorizationService,
		activityService:      activityService,
	}
}

// ListRequests handles GET /admin/requests
func (h *AdminHandler) ListRequests(c *gin.Context) {
	statusFilter := c.Query("status")
	page := utils.ParsePage(c.Query("page"))
	pageSize := utils.ParsePageSize(c.Query("pageSize"))

	response, svcErr := h.authorizationService.ListRequests(c.Request.Context(), statusFilter, page, pageSize)
	if svcErr != nil {
		utils.SendServiceError(c, svcErr)
		return
	}

	utils.SendOKResponse(c, response)
}

// DecideRequest handles POST /admin/requests/:requestId/decision
func (h *AdminHandler) DecideRequest(c *gin.Context) {
	requestID, err := pkgutils.ParseRequestID(c.Param("requestId"))
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	var request models.DecisionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	adminID := utils.GetAdminIDFromContext(c)
	if adminID == "" {
		utils.SendUnauthorizedError(c, "Admin authentication required")
		return
	}

	response, svcErr := h.authorizationService.Decide(c.Request.Context(), requestID, request.Decision, adminID, request.Notes)
	if svcErr != nil {
		utils.SendServiceError(c, svcErr)
		return
	}

	utils.SendOKResponse(c, response)
}

// ActivitySummary handles GET /admin/activity/summary
func (h *AdminHandler) ActivitySummary(c *gin.Context) {
	response, svcErr := h.activityService.Summary(c.Request.Context())
	if svcErr != nil {
		utils.SendServiceError(c, svcErr)
		return
	}

	utils.SendOKResponse(c, response)
}
