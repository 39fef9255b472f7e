package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideParam = "_method"

// MethodOverride lets HTML forms, which can only POST, reach PUT and DELETE
// routes through a "_method" query parameter.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.URL.Query().Get(methodOverrideParam)); m {
			case http.MethodPut, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
