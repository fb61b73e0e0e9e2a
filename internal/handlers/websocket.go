package handlers

import (
	"net/http"

	"github.com/hannatrush/PetSoft/internal/middleware"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades clients onto the refresh hub so they learn when
// their pet list changes server-side.
type WebSocketHandler struct {
	hub         *services.RefreshHub
	userService *services.UserService
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *services.RefreshHub, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
	}
}

// HandleWebSocket handles GET /ws. Browsers cannot set headers on websocket
// dials, so the token also comes via query parameter or the session cookie.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.userService.ValidateToken(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(claims.UserID, conn)
	defer h.hub.Unregister(claims.UserID, conn)

	log.Info().Str("user_id", claims.UserID).Msg("WebSocket connection established")

	// The connection is push-only; drain reads until the client goes away so
	// control frames keep flowing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
