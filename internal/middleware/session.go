package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the browser session id.
const SessionCookieName = "session_id"

const sessionMaxAge = 7 * 24 * 60 * 60

// Session makes sure every request carries a session id. A missing or
// malformed cookie gets a fresh uuid.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				sessionID = c.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   sessionMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), SessionIDCtxKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
