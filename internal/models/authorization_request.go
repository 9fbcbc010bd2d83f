package models

// Authorization request lifecycle statuses. PENDING is the only non-terminal
// state; APPROVED and DENIED are sticky.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusDenied   = "DENIED"
)

// Admin decision values accepted by the decision endpoint
const (
	DecisionApprove = "APPROVE"
	DecisionDeny    = "DENY"
)

// StatusFilterAll lists requests regardless of status
const StatusFilterAll = "ALL"

// AuthorizationRequest represents a stored authorization request
type AuthorizationRequest struct {
	RequestID      int64   `db:"REQUEST_ID" json:"id"`
	UserIdentifier string  `db:"USER_IDENTIFIER" json:"userIdentifier"`
	SubmissionID   *int64  `db:"SUBMISSION_ID" json:"submissionId,omitempty"`
	IPAddress      string  `db:"IP_ADDRESS" json:"ipAddress"`
	UserAgent      string  `db:"USER_AGENT" json:"userAgent"`
	Status         string  `db:"STATUS" json:"status"`
	RequestedAt    int64   `db:"REQUESTED_AT" json:"requestedAt"`
	DecidedAt      *int64  `db:"DECIDED_AT" json:"decidedAt,omitempty"`
	DecidedBy      *string `db:"DECIDED_BY" json:"decidedBy,omitempty"`
	Notes          *string `db:"NOTES" json:"notes,omitempty"`
}

// IsPending checks if the request has not been decided yet
func (r *AuthorizationRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsApproved checks if the request was approved
func (r *AuthorizationRequest) IsApproved() bool {
	return r.Status == StatusApproved
}

// IsDenied checks if the request was denied
func (r *AuthorizationRequest) IsDenied() bool {
	return r.Status == StatusDenied
}

// ClientMetadata carries the connection details captured at creation time
type ClientMetadata struct {
	IPAddress string
	UserAgent string
}

// AuthorizationCreateRequest is the client payload for creating a request
type AuthorizationCreateRequest struct {
	SessionID    string `json:"sessionId" binding:"required"`
	SubmissionID *int64 `json:"submissionId"`
}

// AuthorizationCreateResponse is returned after a request is created
type AuthorizationCreateResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// AuthorizationStatusResponse is returned to a polling client
type AuthorizationStatusResponse struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	CanProceed bool   `json:"canProceed"`
	Message    string `json:"message"`
	DecidedAt  *int64 `json:"decidedAt,omitempty"`
}

// DecisionRequest is the admin payload for deciding a request
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
}

// DecisionResponse is returned after a successful decision
type DecisionResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// RequestListResponse is the paginated admin queue view. PendingCount is
// always computed over the full PENDING set, independent of the filter.
type RequestListResponse struct {
	Items        []AuthorizationRequest `json:"items"`
	Total        int                    `json:"total"`
	Page         int                    `json:"page"`
	PageSize     int                    `json:"pageSize"`
	TotalPages   int                    `json:"totalPages"`
	PendingCount int                    `json:"pendingCount"`
}
