package constants

import "time"

// Session and context keys
const (
	SessionCookieName   = "study_session"
	SessionKeyUserID    = "user_id"
	SessionKeyGuestKey  = "guest_key"
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"
	ContextKeyWorkspace = "workspace"
	ContextKeyProfile   = "profile"
	ContextKeyTask      = "task"
	ContextKeyGroup     = "group"
)

// Authentication
const (
	MinPasswordLength = 8
	SessionMaxAge     = 86400 * 7
)

// Guests
const (
	GuestSessionTTL  = 7 * 24 * time.Hour
	GuestKeyPrefix   = "guest:"
	DefaultGuestName = "Invitado"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxAIGeneratedTasks caps how many drafts a single extraction may return.
const MaxAIGeneratedTasks = 20
