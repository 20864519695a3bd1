package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeInvalidCommand = "INVALID_COMMAND"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Membership and item rules
	ErrCodeAlreadyJoined      = "ALREADY_JOINED"
	ErrCodeAlreadyInvited     = "ALREADY_INVITED"
	ErrCodeAlreadyPicked      = "ALREADY_PICKED"
	ErrCodeDuplicateItem      = "DUPLICATE_ITEM"
	ErrCodeOrganizerNotMember = "ORGANIZER_NOT_MEMBER"
	ErrCodeOrganizerOfShared  = "ORGANIZER_OF_SHARED_EVENT"
	ErrCodeNoPendingItems     = "NO_PENDING_ITEMS"
	ErrCodeInvalidCategory    = "INVALID_CATEGORY"

	// Plan and feature gates
	ErrCodeQuotaExceeded      = "QUOTA_EXCEEDED"
	ErrCodeFeatureUnavailable = "FEATURE_UNAVAILABLE"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Kind classifies a DomainError for the calling layer.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindBadRequest Kind = "BAD_REQUEST"
	KindPermission Kind = "PERMISSION"
)

// Documents named by NotFound errors.
const (
	DocEvent      = "event"
	DocUser       = "user"
	DocItem       = "item"
	DocPoll       = "poll"
	DocPollOption = "poll_option"
)

// DomainError is the only error kind the engine reports for rule violations.
// Anything else returned by a service is a wrapped store or dispatch failure.
type DomainError struct {
	Kind     Kind
	Code     string
	Document string
	Message  string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on kind, and on code and document when the target sets them.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	if t.Document != "" && t.Document != e.Document {
		return false
	}
	return true
}

// NotFound reports that a referenced document does not exist.
func NotFound(document string) *DomainError {
	return &DomainError{
		Kind:     KindNotFound,
		Code:     ErrCodeNotFound,
		Document: document,
		Message:  fmt.Sprintf("'%s' not found", document),
	}
}

// BadRequest reports a rule violation identified by code.
func BadRequest(code, message string) *DomainError {
	return &DomainError{Kind: KindBadRequest, Code: code, Message: message}
}

// Permission reports a credential or authorization failure.
func Permission(message string) *DomainError {
	return &DomainError{Kind: KindPermission, Code: ErrCodeUnauthorized, Message: message}
}

// Predefined domain errors. Use errors.Is against these; messages of returned
// errors may differ.
var (
	ErrEventNotFound      = NotFound(DocEvent)
	ErrUserNotFound       = NotFound(DocUser)
	ErrItemNotFound       = NotFound(DocItem)
	ErrPollNotFound       = NotFound(DocPoll)
	ErrPollOptionNotFound = NotFound(DocPollOption)

	ErrAlreadyJoined      = BadRequest(ErrCodeAlreadyJoined, "User already joined this event")
	ErrAlreadyInvited     = BadRequest(ErrCodeAlreadyInvited, "User already invited to this event")
	ErrAlreadyPicked      = BadRequest(ErrCodeAlreadyPicked, "Item already picked. Refresh your Event.")
	ErrInvalidCommand     = BadRequest(ErrCodeInvalidCommand, "Invalid command")
	ErrDuplicateItem      = BadRequest(ErrCodeDuplicateItem, "Item name already exists in this event")
	ErrOrganizerNotMember = BadRequest(ErrCodeOrganizerNotMember, "Organizer must be a member of the event")
	ErrOrganizerOfShared  = BadRequest(ErrCodeOrganizerOfShared, "Transfer the events you organize with other members first")
	ErrNoPendingItems     = BadRequest(ErrCodeNoPendingItems, "There is no pending items for this event")
	ErrInvalidCategory    = BadRequest(ErrCodeInvalidCategory, "Event category not valid")
	ErrQuotaExceeded      = BadRequest(ErrCodeQuotaExceeded, "Plan limit has been reached")
	ErrFeatureUnavailable = BadRequest(ErrCodeFeatureUnavailable, "Feature is not available")
	ErrInvalidInput       = BadRequest(ErrCodeInvalidInput, "Invalid input")

	ErrPermission = Permission("Please authenticate.")
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as an API error. Domain errors keep their code and
// message; any other error is logged and answered with an opaque 500.
func Respond(c *gin.Context, err error) {
	var domainErr *DomainError
	if stderrors.As(err, &domainErr) {
		apiErr := NewAPIError(domainErr.Code, domainErr.Message)
		if domainErr.Document != "" {
			apiErr.Details = gin.H{"document": domainErr.Document}
		}
		RespondWithError(c, StatusFor(domainErr.Kind), apiErr)
		return
	}

	slog.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	InternalError(c, "")
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// NotFoundResponse sends a 404 response
func NotFoundResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequestResponse sends a 400 response
func BadRequestResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}
