package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stepguard/approval-api/internal/config"
	"github.com/stepguard/approval-api/internal/dao"
	"github.com/stepguard/approval-api/internal/database"
	"github.com/stepguard/approval-api/internal/models"
	"github.com/stepguard/approval-api/internal/serviceerror"
	httputils "github.com/stepguard/approval-api/internal/utils"
	"github.com/stepguard/approval-api/pkg/utils"
)

// AuthorizationService handles business logic for the authorization approval
// workflow: request creation, client status polling and admin decisions.
type AuthorizationService struct {
	requestDAO *dao.AuthorizationRequestDAO
	activity   *ActivityService
	db         *database.DB
	cfg        *config.ApprovalConfig
	logger     *logrus.Logger
}

// NewAuthorizationService creates a new authorization service instance
func NewAuthorizationService(
	requestDAO *dao.AuthorizationRequestDAO,
	activity *ActivityService,
	db *database.DB,
	cfg *config.ApprovalConfig,
	logger *logrus.Logger,
) *AuthorizationService {
	return &AuthorizationService{
		requestDAO: requestDAO,
		activity:   activity,
		db:         db,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateRequest creates a new PENDING authorization request for a session.
// Repeated calls for the same session each yield an independent request; the
// protocol does not deduplicate, because a user may legitimately resubmit.
func (s *AuthorizationService) CreateRequest(ctx context.Context, request *models.AuthorizationCreateRequest, meta models.ClientMetadata) (*models.AuthorizationCreateResponse, *serviceerror.ServiceError) {
	if err := utils.ValidateSessionIdentifier(request.SessionID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	authRequest := &models.AuthorizationRequest{
		UserIdentifier: utils.SanitizeString(request.SessionID),
		SubmissionID:   request.SubmissionID,
		IPAddress:      meta.IPAddress,
		UserAgent:      meta.UserAgent,
		Status:         models.StatusPending,
		RequestedAt:    utils.GetCurrentTimeMillis(),
	}

	if err := s.requestDAO.Create(ctx, authRequest); err != nil {
		s.logger.WithError(err).Error("Failed to create authorization request")
		return nil, &serviceerror.DatabaseError
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": authRequest.RequestID,
	}).Info("Authorization request created")

	sessionID := authRequest.UserIdentifier
	s.activity.Record(ctx, models.ActionAuthorizationRequested, "verification",
		fmt.Sprintf("request %d", authRequest.RequestID), &sessionID)

	return &models.AuthorizationCreateResponse{
		ID:     authRequest.RequestID,
		Status: authRequest.Status,
	}, nil
}

// CheckStatus reports the current state of a request to the owning session.
// A session may only poll its own requests.
func (s *AuthorizationService) CheckStatus(ctx context.Context, requestID int64, sessionID string) (*models.AuthorizationStatusResponse, *serviceerror.ServiceError) {
	if err := utils.ValidateSessionIdentifier(sessionID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	// Stored identifiers are sanitized at create; normalize the same way
	// before the ownership comparison.
	sessionID = utils.SanitizeString(sessionID)

	request, err := s.requestDAO.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &serviceerror.RequestNotFoundError
		}
		s.logger.WithError(err).Error("Failed to retrieve authorization request")
		return nil, &serviceerror.DatabaseError
	}

	if request.UserIdentifier != sessionID {
		return nil, &serviceerror.ForbiddenError
	}

	response := &models.AuthorizationStatusResponse{
		ID:        request.RequestID,
		Status:    request.Status,
		DecidedAt: request.DecidedAt,
	}

	switch {
	case request.IsApproved():
		response.CanProceed = true
		response.Message = "Approved"
	case request.IsDenied():
		response.Message = s.cfg.DenialMessage
		if request.Notes != nil && *request.Notes != "" {
			response.Message = *request.Notes
		}
	case request.IsPending():
		response.Message = s.cfg.WaitingMessage
	}

	s.activity.Record(ctx, models.ActionAuthorizationPolled, "verification",
		fmt.Sprintf("request %d", request.RequestID), &sessionID)

	return response, nil
}

// Decide records an admin decision on a PENDING request. The transition is a
// compare-and-swap at the storage layer: of two racing decisions exactly one
// wins and the loser observes AlreadyDecided.
func (s *AuthorizationService) Decide(ctx context.Context, requestID int64, decision, adminID, notes string) (*models.DecisionResponse, *serviceerror.ServiceError) {
	if err := utils.ValidateRequired("admin identity", adminID); err != nil {
		return nil, &serviceerror.UnauthorizedError
	}
	if err := utils.ValidateDecision(decision); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateNotes(notes); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	newStatus := models.StatusApproved
	actionType := models.ActionAuthorizationApproved
	if strings.ToUpper(decision) == models.DecisionDeny {
		newStatus = models.StatusDenied
		actionType = models.ActionAuthorizationDenied
	}

	var notesValue *string
	if notes != "" {
		notesValue = &notes
	}

	decidedAt := utils.GetCurrentTimeMillis()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to begin transaction")
		return nil, &serviceerror.DatabaseError
	}
	defer tx.Rollback()

	rowsAffected, err := s.requestDAO.UpdateStatusIfPendingWithTx(ctx, tx, requestID, newStatus, adminID, notesValue, decidedAt)
	if err != nil {
		s.logger.WithError(err).Error("Failed to update authorization request status")
		return nil, &serviceerror.DatabaseError
	}

	if rowsAffected == 0 {
		// Lost the race or the request never existed; read to tell apart.
		if _, err := s.requestDAO.GetByIDWithTx(ctx, tx, requestID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &serviceerror.RequestNotFoundError
			}
			s.logger.WithError(err).Error("Failed to retrieve authorization request")
			return nil, &serviceerror.DatabaseError
		}
		return nil, &serviceerror.AlreadyDecidedError
	}

	updated, err := s.requestDAO.GetByIDWithTx(ctx, tx, requestID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to retrieve decided authorization request")
		return nil, &serviceerror.DatabaseError
	}

	if err := tx.Commit(); err != nil {
		s.logger.WithError(err).Error("Failed to commit decision transaction")
		return nil, &serviceerror.DatabaseError
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     updated.Status,
		"decided_by": adminID,
		"decided_at": utils.FormatTime(utils.MillisToTime(decidedAt)),
	}).Info("Authorization request decided")

	s.activity.Record(ctx, actionType, "admin-dashboard",
		fmt.Sprintf("request %d", requestID), nil)

	return &models.DecisionResponse{
		ID:     updated.RequestID,
		Status: updated.Status,
	}, nil
}

// ListRequests returns one page of the admin queue plus the count of PENDING
// requests over the whole table, regardless of the active filter.
func (s *AuthorizationService) ListRequests(ctx context.Context, statusFilter string, page, pageSize int) (*models.RequestListResponse, *serviceerror.ServiceError) {
	if err := utils.ValidateStatusFilter(statusFilter); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	offset := httputils.PageOffset(page, pageSize)

	items, total, err := s.requestDAO.List(ctx, strings.ToUpper(statusFilter), pageSize, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list authorization requests")
		return nil, &serviceerror.DatabaseError
	}

	pendingCount, err := s.requestDAO.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count pending authorization requests")
		return nil, &serviceerror.DatabaseError
	}

	return &models.RequestListResponse{
		Items:        items,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   httputils.TotalPages(total, pageSize),
		PendingCount: pendingCount,
	}, nil
}
