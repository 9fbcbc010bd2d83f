package models

// Activity action types emitted by the authorization workflow
const (
	ActionAuthorizationRequested = "authorization requested"
	ActionAuthorizationPolled    = "authorization status polled"
	ActionAuthorizationApproved  = "authorization approved"
	ActionAuthorizationDenied    = "authorization denied"
)

// ActivityEvent is a discrete, fire-and-forget record of a user or admin
// action, consumed by the dashboard's telemetry view
type ActivityEvent struct {
	EventID    int64   `db:"EVENT_ID" json:"id"`
	ActionType string  `db:"ACTION_TYPE" json:"actionType"`
	Page       string  `db:"PAGE" json:"page"`
	Context    string  `db:"CONTEXT" json:"context"`
	SessionID  *string `db:"SESSION_ID" json:"sessionId,omitempty"`
	OccurredAt int64   `db:"OCCURRED_AT" json:"occurredAt"`
}

// ActivityActionCount is one row of the per-action aggregation
type ActivityActionCount struct {
	ActionType string `db:"ACTION_TYPE" json:"actionType"`
	Count      int    `db:"EVENT_COUNT" json:"count"`
}

// ActivitySummaryResponse is the admin telemetry summary payload
type ActivitySummaryResponse struct {
	Actions     []ActivityActionCount `json:"actions"`
	TotalEvents int                   `json:"totalEvents"`
}
