package constants

const (
	// Session
	SessionCookieName = "splitmate_session"
	ContextKeyUserID  = "user_id"
	ContextKeyEventID = "event_id"
	RequestIDHeader   = "X-Request-ID"

	// Auth
	MinPasswordLength = 3
	MinUsernameLength = 2

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Suggestions
	MaxSuggestedItems = 10
)

// Mail actions checked against the feature gate.
const (
	MailActionInvite   = "invite"
	MailActionReminder = "reminder"
)
