package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hannatrush/PetSoft/internal/middleware"
	"github.com/hannatrush/PetSoft/internal/models"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles sign-up, login, logout, and session refresh
type AuthHandler struct {
	userService   *services.UserService
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		secureCookies: secureCookies,
	}
}

// CredentialsRequest is the body for sign-up and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse returns the user along with the token for non-cookie clients
type SessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to sign up")
		respondAppError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User signed up")

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusCreated, SessionResponse{User: user, Token: token})
}

// LogIn handles POST /api/v1/auth/login
func (h *AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Failed login attempt")
		respondAppError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// LogOut handles POST /api/v1/auth/logout: invalidates the session cookie and
// sends the user home.
func (h *AuthHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		log.Info().Str("user_id", session.UserID).Msg("User logged out")
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Refresh handles POST /api/v1/auth/refresh: re-issues the session token with
// the access flag re-read from the store, without requiring a new login.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := rawToken(r)
	if raw == "" {
		respondError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, token, err := h.userService.RefreshToken(r.Context(), raw)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// rawToken pulls the raw session token for refresh, cookie first then Bearer.
func rawToken(r *http.Request) string {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
