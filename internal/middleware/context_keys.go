package middleware

import "context"

// ContextKey is the type of request context keys set by this package.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated user id.
	UserIDCtxKey = ContextKey("user_id")
	// UserRoleCtxKey holds the role claim of the authenticated user.
	UserRoleCtxKey = ContextKey("user_role")
	// SessionIDCtxKey holds the browser session id used for flash notices.
	SessionIDCtxKey = ContextKey("session_id")
)

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(string)
	return id, ok && id != ""
}

// SessionIDFromContext returns the session id set by Session.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDCtxKey).(string)
	return id
}
