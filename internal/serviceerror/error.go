package serviceerror

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError is the structured error returned by the service layer. Domain
// outcomes (not found, forbidden, already decided) are values of this type so
// handlers can map them to HTTP statuses without string matching.
type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             "ASE-5000",
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             "ASE-5001",
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             "ACE-4000",
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             "ACE-4001",
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	UnauthorizedError = ServiceError{
		Type:             ClientErrorType,
		Code:             "ACE-4010",
		Error:            "unauthorized",
		ErrorDescription: "Admin authentication is required",
	}

	ForbiddenError = ServiceError{
		Type:             ClientErrorType,
		Code:             "ACE-4030",
		Error:            "forbidden",
		ErrorDescription: "The session does not own this authorization request",
	}

	RequestNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             "ACE-4040",
		Error:            "request_not_found",
		ErrorDescription: "Authorization request not found",
	}

	AlreadyDecidedError = ServiceError{
		Type:             ClientErrorType,
		Code:             "ACE-4090",
		Error:            "already_decided",
		ErrorDescription: "Authorization request was already resolved by someone else",
	}
)

// CustomServiceError derives a new error from a base, replacing its description
func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}
