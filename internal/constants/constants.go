package constants

// Session / context keys
const (
	SessionCookieName = "taskhub_session"
	ContextKeyUserID  = "user_id"
	ContextKeyActor   = "actor"
	ContextKeyTask    = "task"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Attachments
const (
	// MaxAttachmentSize bounds a single decoded attachment (10 MiB).
	MaxAttachmentSize = 10 << 20
)
