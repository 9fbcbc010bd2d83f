package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stepguard/approval-api/internal/database"
	"github.com/stepguard/approval-api/internal/models"
)

const (
	queryInsertAuthRequest = `
		INSERT INTO AUTH_REQUEST (
			USER_IDENTIFIER, SUBMISSION_ID, IP_ADDRESS, USER_AGENT,
			STATUS, REQUESTED_AT
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	queryGetAuthRequestByID = `
		SELECT REQUEST_ID, USER_IDENTIFIER, SUBMISSION_ID, IP_ADDRESS, USER_AGENT,
		       STATUS, REQUESTED_AT, DECIDED_AT, DECIDED_BY, NOTES
		FROM AUTH_REQUEST
		WHERE REQUEST_ID = ?
	`

	queryListAuthRequests = `
		SELECT REQUEST_ID, USER_IDENTIFIER, SUBMISSION_ID, IP_ADDRESS, USER_AGENT,
		       STATUS, REQUESTED_AT, DECIDED_AT, DECIDED_BY, NOTES
		FROM AUTH_REQUEST
		ORDER BY REQUESTED_AT DESC
		LIMIT ? OFFSET ?
	`

	queryListAuthRequestsByStatus = `
		SELECT REQUEST_ID, USER_IDENTIFIER, SUBMISSION_ID, IP_ADDRESS, USER_AGENT,
		       STATUS, REQUESTED_AT, DECIDED_AT, DECIDED_BY, NOTES
		FROM AUTH_REQUEST
		WHERE STATUS = ?
		ORDER BY REQUESTED_AT DESC
		LIMIT ? OFFSET ?
	`

	queryCountAuthRequests = `SELECT COUNT(*) FROM AUTH_REQUEST`

	queryCountAuthRequestsByStatus = `SELECT COUNT(*) FROM AUTH_REQUEST WHERE STATUS = ?`

	// The status guard in the WHERE clause is the compare-and-swap: two
	// concurrent decisions on the same request can never both update the row.
	queryDecideAuthRequest = `
		UPDATE AUTH_REQUEST
		SET STATUS = ?, DECIDED_AT = ?, DECIDED_BY = ?, NOTES = ?
		WHERE REQUEST_ID = ? AND STATUS = ?
	`
)

// AuthorizationRequestDAO handles database operations for authorization requests
type AuthorizationRequestDAO struct {
	db *database.DB
}

// NewAuthorizationRequestDAO creates a new AuthorizationRequestDAO instance
func NewAuthorizationRequestDAO(db *database.DB) *AuthorizationRequestDAO {
	return &AuthorizationRequestDAO{db: db}
}

// Create inserts a new authorization request and assigns its ID
func (dao *AuthorizationRequestDAO) Create(ctx context.Context, request *models.AuthorizationRequest) error {
	result, err := dao.db.ExecContext(
		ctx,
		queryInsertAuthRequest,
		request.UserIdentifier,
		request.SubmissionID,
		request.IPAddress,
		request.UserAgent,
		request.Status,
		request.RequestedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create authorization request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted request ID: %w", err)
	}

	request.RequestID = id
	return nil
}

// GetByID retrieves an authorization request by ID
func (dao *AuthorizationRequestDAO) GetByID(ctx context.Context, requestID int64) (*models.AuthorizationRequest, error) {
	var request models.AuthorizationRequest
	err := dao.db.GetContext(ctx, &request, queryGetAuthRequestByID, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get authorization request: %w", err)
	}

	return &request, nil
}

// GetByIDWithTx retrieves an authorization request by ID using a transaction
func (dao *AuthorizationRequestDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, requestID int64) (*models.AuthorizationRequest, error) {
	var request models.AuthorizationRequest
	err := tx.GetContext(ctx, &request, queryGetAuthRequestByID, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get authorization request: %w", err)
	}

	return &request, nil
}

// List retrieves authorization requests ordered by REQUESTED_AT descending.
// An empty status or "ALL" lists every request. Returns the page of items and
// the total count matching the filter.
func (dao *AuthorizationRequestDAO) List(ctx context.Context, status string, limit, offset int) ([]models.AuthorizationRequest, int, error) {
	filtered := status != "" && status != models.StatusFilterAll

	var total int
	var err error
	if filtered {
		err = dao.db.GetContext(ctx, &total, queryCountAuthRequestsByStatus, status)
	} else {
		err = dao.db.GetContext(ctx, &total, queryCountAuthRequests)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count authorization requests: %w", err)
	}

	requests := []models.AuthorizationRequest{}
	if filtered {
		err = dao.db.SelectContext(ctx, &requests, queryListAuthRequestsByStatus, status, limit, offset)
	} else {
		err = dao.db.SelectContext(ctx, &requests, queryListAuthRequests, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authorization requests: %w", err)
	}

	return requests, total, nil
}

// CountByStatus counts authorization requests in a given status
func (dao *AuthorizationRequestDAO) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := dao.db.GetContext(ctx, &count, queryCountAuthRequestsByStatus, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count authorization requests by status: %w", err)
	}

	return count, nil
}

// UpdateStatusIfPending performs the atomic PENDING-conditioned status
// transition and returns the number of rows affected. Zero rows means the
// request either does not exist or was already decided.
func (dao *AuthorizationRequestDAO) UpdateStatusIfPending(ctx context.Context, requestID int64, status string, decidedBy string, notes *string, decidedAt int64) (int64, error) {
	result, err := dao.db.ExecContext(
		ctx,
		queryDecideAuthRequest,
		status,
		decidedAt,
		decidedBy,
		notes,
		requestID,
		models.StatusPending,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to update authorization request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// UpdateStatusIfPendingWithTx performs the atomic PENDING-conditioned status
// transition using a transaction
func (dao *AuthorizationRequestDAO) UpdateStatusIfPendingWithTx(ctx context.Context, tx *database.Transaction, requestID int64, status string, decidedBy string, notes *string, decidedAt int64) (int64, error) {
	result, err := tx.ExecContext(
		ctx,
		queryDecideAuthRequest,
		status,
		decidedAt,
		decidedBy,
		notes,
		requestID,
		models.StatusPending,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to update authorization request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
