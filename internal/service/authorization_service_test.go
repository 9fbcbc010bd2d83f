package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepguard/approval-api/internal/config"
	"github.com/stepguard/approval-api/internal/dao"
	"github.com/stepguard/approval-api/internal/database"
	"github.com/stepguard/approval-api/internal/models"
	"github.com/stepguard/approval-api/internal/serviceerror"
)

func newTestService(t *testing.T) (*AuthorizationService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := database.Wrap(sqlx.NewDb(mockDB, "sqlmock"), logger)
	requestDAO := dao.NewAuthorizationRequestDAO(db)
	activity := NewActivityService(dao.NewActivityEventDAO(db), logger)

	cfg := &config.ApprovalConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		WaitingMessage:  "Your request is pending review",
		DenialMessage:   "Your request was denied",
	}

	return NewAuthorizationService(requestDAO, activity, db, cfg, logger), mock
}

func requestColumns() []string {
	return []string{
		"REQUEST_ID", "USER_IDENTIFIER", "SUBMISSION_ID", "IP_ADDRESS", "USER_AGENT",
		"STATUS", "REQUESTED_AT", "DECIDED_AT", "DECIDED_BY", "NOTES",
	}
}

func storedRequestRow(id int64, session, status string, decidedAt *int64, decidedBy, notes *string) *sqlmock.Rows {
	return sqlmock.NewRows(requestColumns()).
		AddRow(id, session, nil, "203.0.113.7", "test-agent", status, int64(1700000000000), decidedAt, decidedBy, notes)
}

func TestCreateRequest_NewRequestIsPending(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, svcErr := svc.CreateRequest(context.Background(), &models.AuthorizationCreateRequest{
		SessionID: "abc123",
	}, models.ClientMetadata{IPAddress: "203.0.113.7", UserAgent: "test-agent"})

	require.Nil(t, svcErr)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequest_EmptySessionRejected(t *testing.T) {
	svc, _ := newTestService(t)

	resp, svcErr := svc.CreateRequest(context.Background(), &models.AuthorizationCreateRequest{
		SessionID: "  ",
	}, models.ClientMetadata{})

	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestCreateRequest_TelemetryFailureDoesNotAbort(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnError(errors.New("event table unavailable"))

	resp, svcErr := svc.CreateRequest(context.Background(), &models.AuthorizationCreateRequest{
		SessionID: "abc123",
	}, models.ClientMetadata{})

	require.Nil(t, svcErr)
	assert.Equal(t, int64(5), resp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStatus_PendingWaitingMessage(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusPending, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, svcErr := svc.CheckStatus(context.Background(), 1, "abc123")
	require.Nil(t, svcErr)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.False(t, resp.CanProceed)
	assert.Equal(t, "Your request is pending review", resp.Message)
	assert.Nil(t, resp.DecidedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStatus_ApprovedCanProceed(t *testing.T) {
	svc, mock := newTestService(t)

	decidedAt := int64(1700000005000)
	decidedBy := "admin"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusApproved, &decidedAt, &decidedBy, nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, svcErr := svc.CheckStatus(context.Background(), 1, "abc123")
	require.Nil(t, svcErr)
	assert.True(t, resp.CanProceed)
	assert.Equal(t, models.StatusApproved, resp.Status)
	require.NotNil(t, resp.DecidedAt)
	assert.Equal(t, decidedAt, *resp.DecidedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStatus_DeniedCarriesAdminNotes(t *testing.T) {
	svc, mock := newTestService(t)

	decidedAt := int64(1700000005000)
	decidedBy := "admin"
	notes := "suspicious IP"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusDenied, &decidedAt, &decidedBy, &notes))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, svcErr := svc.CheckStatus(context.Background(), 1, "abc123")
	require.Nil(t, svcErr)
	assert.False(t, resp.CanProceed)
	assert.Equal(t, models.StatusDenied, resp.Status)
	assert.Contains(t, resp.Message, "suspicious IP")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStatus_PaddedSessionIdentifierStillOwns(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusPending, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, svcErr := svc.CheckStatus(context.Background(), 1, "  abc123  ")
	require.Nil(t, svcErr)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStatus_OtherSessionForbidden(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusPending, nil, nil, nil))

	resp, svcErr := svc.CheckStatus(context.Background(), 1, "someone-else")
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStatus_UnknownRequest(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	resp, svcErr := svc.CheckStatus(context.Background(), 404, "abc123")
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.RequestNotFoundError.Code, svcErr.Code)
}

func TestDecide_ApproveSetsDecisionFields(t *testing.T) {
	svc, mock := newTestService(t)

	decidedAt := int64(1700000005000)
	decidedBy := "admin"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusApproved, &decidedAt, &decidedBy, nil))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, svcErr := svc.Decide(context.Background(), 1, models.DecisionApprove, "admin", "")
	require.Nil(t, svcErr)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, models.StatusApproved, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide_AlreadyDecidedIsIdempotentReject(t *testing.T) {
	svc, mock := newTestService(t)

	decidedAt := int64(1700000005000)
	decidedBy := "first-admin"
	notes := "ok"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(1)).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusApproved, &decidedAt, &decidedBy, &notes))
	mock.ExpectRollback()

	resp, svcErr := svc.Decide(context.Background(), 1, models.DecisionDeny, "second-admin", "")
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.AlreadyDecidedError.Code, svcErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide_UnknownRequest(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	resp, svcErr := svc.Decide(context.Background(), 404, models.DecisionApprove, "admin", "")
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.RequestNotFoundError.Code, svcErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide_InvalidDecisionRejected(t *testing.T) {
	svc, _ := newTestService(t)

	resp, svcErr := svc.Decide(context.Background(), 1, "MAYBE", "admin", "")
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestDecide_MissingAdminIdentity(t *testing.T) {
	svc, _ := newTestService(t)

	resp, svcErr := svc.Decide(context.Background(), 1, models.DecisionApprove, "", "")
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.UnauthorizedError.Code, svcErr.Code)
}

// Two admins race on the same PENDING request: the storage-level
// compare-and-swap lets exactly one transition through, the other observes
// the already-decided conflict.
func TestDecide_ConcurrentDecisionsSingleWinner(t *testing.T) {
	svc, mock := newTestService(t)
	mock.MatchExpectationsInOrder(false)

	decidedAt := int64(1700000005000)
	decidedBy := "admin"

	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE AUTH_REQUEST")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusApproved, &decidedAt, &decidedBy, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT REQUEST_ID")).
		WillReturnRows(storedRequestRow(1, "abc123", models.StatusApproved, &decidedAt, &decidedBy, nil))
	mock.ExpectCommit()
	mock.ExpectRollback()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ACTIVITY_EVENT")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	results := make([]*serviceerror.ServiceError, 2)
	decisions := []string{models.DecisionApprove, models.DecisionDeny}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, svcErr := svc.Decide(context.Background(), 1, decisions[idx], "admin", "")
			results[idx] = svcErr
		}(i)
	}
	wg.Wait()

	winners := 0
	losers := 0
	for _, svcErr := range results {
		if svcErr == nil {
			winners++
		} else if svcErr.Code == serviceerror.AlreadyDecidedError.Code {
			losers++
		}
	}

	assert.Equal(t, 1, winners, "exactly one decision must win")
	assert.Equal(t, 1, losers, "the other decision must observe AlreadyDecided")
}

func TestListRequests_PaginationEnvelope(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM AUTH_REQUEST WHERE STATUS = ?")).
		WithArgs(models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(25))

	listRows := sqlmock.NewRows(requestColumns())
	for i := 0; i < 5; i++ {
		listRows.AddRow(int64(5-i), "session", nil, "203.0.113.7", "test-agent",
			models.StatusPending, int64(1700000000000), nil, nil, nil)
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE STATUS = ?")).
		WithArgs(models.StatusPending, 10, 20).
		WillReturnRows(listRows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM AUTH_REQUEST WHERE STATUS = ?")).
		WithArgs(models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(25))

	resp, svcErr := svc.ListRequests(context.Background(), models.StatusPending, 3, 10)
	require.Nil(t, svcErr)
	assert.Len(t, resp.Items, 5)
	assert.Equal(t, 25, resp.Total)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 25, resp.PendingCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRequests_PageSizeClamped(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM AUTH_REQUEST")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY REQUESTED_AT DESC")).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(requestColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM AUTH_REQUEST WHERE STATUS = ?")).
		WithArgs(models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

	resp, svcErr := svc.ListRequests(context.Background(), "", 1, 5000)
	require.Nil(t, svcErr)
	assert.Equal(t, 100, resp.PageSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRequests_InvalidFilter(t *testing.T) {
	svc, _ := newTestService(t)

	resp, svcErr := svc.ListRequests(context.Background(), "SOMETIMES", 1, 10)
	assert.Nil(t, resp)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}
