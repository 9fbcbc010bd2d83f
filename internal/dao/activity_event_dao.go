package dao

import (
	"context"
	"fmt"

	"github.com/stepguard/approval-api/internal/database"
	"github.com/stepguard/approval-api/internal/models"
)

const (
	queryInsertActivityEvent = `
		INSERT INTO ACTIVITY_EVENT (
			ACTION_TYPE, PAGE, CONTEXT, SESSION_ID, OCCURRED_AT
		) VALUES (?, ?, ?, ?, ?)
	`

	querySummarizeActivityByAction = `
		SELECT ACTION_TYPE, COUNT(*) AS EVENT_COUNT
		FROM ACTIVITY_EVENT
		GROUP BY ACTION_TYPE
		ORDER BY EVENT_COUNT DESC
	`
)

// ActivityEventDAO handles database operations for the activity event log
type ActivityEventDAO struct {
	db *database.DB
}

// NewActivityEventDAO creates a new ActivityEventDAO instance
func NewActivityEventDAO(db *database.DB) *ActivityEventDAO {
	return &ActivityEventDAO{db: db}
}

// Create inserts a new activity event
func (dao *ActivityEventDAO) Create(ctx context.Context, event *models.ActivityEvent) error {
	_, err := dao.db.ExecContext(
		ctx,
		queryInsertActivityEvent,
		event.ActionType,
		event.Page,
		event.Context,
		event.SessionID,
		event.OccurredAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create activity event: %w", err)
	}

	return nil
}

// SummarizeByAction aggregates event counts per action type
func (dao *ActivityEventDAO) SummarizeByAction(ctx context.Context) ([]models.ActivityActionCount, error) {
	counts := []models.ActivityActionCount{}
	err := dao.db.SelectContext(ctx, &counts, querySummarizeActivityByAction)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize activity events: %w", err)
	}

	return counts, nil
}
