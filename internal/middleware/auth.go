package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/progressor-app/progressor/internal/service"
)

type claimsCtxKey struct{}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":               true,
	"/api/v1/auth/register": true,
	"/api/v1/auth/login":    true,
}

// Auth returns middleware that validates JWT credentials. WebSocket
// clients cannot set headers, so /ws accepts the token as a query
// parameter instead.
func Auth(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := ""
			if r.URL.Path == "/ws" {
				token = r.URL.Query().Get("token")
			} else if h := r.Header.Get("Authorization"); h != "" {
				token = strings.TrimPrefix(h, "Bearer ")
				if token == h {
					http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
					return
				}
			}
			if token == "" {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}

			claims, err := authSvc.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated token claims, or nil.
func ClaimsFromContext(ctx context.Context) *service.Claims {
	c, _ := ctx.Value(claimsCtxKey{}).(*service.Claims)
	return c
}

// ClaimsCtxKeyForTest returns the context key used for storing claims.
// Exported only for tests that need to inject claims into the context.
func ClaimsCtxKeyForTest() any {
	return claimsCtxKey{}
}

// UserIDFromContext returns the authenticated user's ID, or "".
func UserIDFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.UserID
	}
	return ""
}
