package constants

// ContextKeyUserID is the key used for the authenticated user ID in both the
// session store and the gin context.
const ContextKeyUserID = "user_id"

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "nudgr_session"

const (
	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Invite token size in bytes. 16 bytes gives a 128-bit token, which is enough
// entropy that collisions are handled with a short retry loop rather than a
// pre-insert lookup.
const InviteTokenBytes = 16

// MaxInviteTokenAttempts bounds the retry loop on a unique-constraint conflict.
const MaxInviteTokenAttempts = 3
