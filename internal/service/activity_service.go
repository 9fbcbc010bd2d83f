package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/stepguard/approval-api/internal/dao"
	"github.com/stepguard/approval-api/internal/models"
	"github.com/stepguard/approval-api/internal/serviceerror"
	"github.com/stepguard/approval-api/pkg/utils"
)

// ActivityService records user and admin activity events. Writes are
// fire-and-forget: a failed event write is logged and never propagated, so
// telemetry can never abort a primary operation.
type ActivityService struct {
	eventDAO *dao.ActivityEventDAO
	logger   *logrus.Logger
}

// NewActivityService creates a new activity service instance
func NewActivityService(eventDAO *dao.ActivityEventDAO, logger *logrus.Logger) *ActivityService {
	return &ActivityService{
		eventDAO: eventDAO,
		logger:   logger,
	}
}

// Record writes one activity event, swallowing storage failures
func (s *ActivityService) Record(ctx context.Context, actionType, page, eventContext string, sessionID *string) {
	event := &models.ActivityEvent{
		ActionType: actionType,
		Page:       page,
		Context:    eventContext,
		SessionID:  sessionID,
		OccurredAt: utils.GetCurrentTimeMillis(),
	}

	if err := s.eventDAO.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action_type": actionType,
			"page":        page,
		}).Warn("Failed to record activity event")
	}
}

// Summary aggregates recorded events per action type
func (s *ActivityService) Summary(ctx context.Context) (*models.ActivitySummaryResponse, *serviceerror.ServiceError) {
	counts, err := s.eventDAO.SummarizeByAction(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to summarize activity events")
		return nil, &serviceerror.DatabaseError
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	return &models.ActivitySummaryResponse{
		Actions:     counts,
		TotalEvents: total,
	}, nil
}
