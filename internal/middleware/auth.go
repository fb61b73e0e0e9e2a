package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hannatrush/PetSoft/internal/routegate"
	"github.com/hannatrush/PetSoft/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "petsoft_session"

// Session is the per-request view of the authenticated user, built from the
// incoming token. It is carried in the request context and never shared
// across requests.
type Session struct {
	UserID    string
	Email     string
	HasAccess bool
}

// TokenValidator verifies a raw session token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.SessionClaims, error)
}

// Authenticate decodes the session token from the cookie (or a Bearer header)
// and stores the resulting Session in the request context. A missing or
// invalid token just means an anonymous request; it never blocks.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session := &Session{
				UserID:    claims.UserID,
				Email:     claims.Email,
				HasAccess: claims.HasAccess,
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RouteGate applies the route authorization decision to page requests,
// redirecting per the decision table.
func RouteGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r.Context())
		kind := routegate.Classify(r.URL.Path)

		decision := routegate.Decide(
			session != nil,
			session != nil && session.HasAccess,
			kind.IsAppPath,
			kind.IsAuthPagePath,
		)
		if !decision.Allow {
			http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous API requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			respondError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccess rejects API requests from users who have not paid.
func RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r.Context())
		if session == nil {
			respondError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !session.HasAccess {
			respondError(w, "payment required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSession extracts the session from the context, nil when anonymous.
func GetSession(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// tokenFromRequest prefers the session cookie and falls back to a Bearer
// Authorization header for non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// errorResponse mirrors the handlers' error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
