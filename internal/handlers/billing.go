package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hannatrush/PetSoft/internal/middleware"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/rs/zerolog/log"
)

// BillingHandler handles the checkout flow
type BillingHandler struct {
	billingService *services.BillingService
	userService    *services.UserService
	auth           *AuthHandler
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *services.BillingService, userService *services.UserService, auth *AuthHandler) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		userService:    userService,
		auth:           auth,
	}
}

// CheckoutResponse carries the hosted checkout URL to redirect to
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ConfirmRequest is the body for the post-redirect confirmation
type ConfirmRequest struct {
	SessionID string `json:"session_id"`
}

// CreateCheckoutSession handles POST /api/v1/checkout
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)

	url, err := h.billingService.CreateCheckoutSession(ctx, session.Email)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to create checkout session")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

// ConfirmCheckout handles POST /api/v1/checkout/confirm: after the provider
// redirects back, verify payment, flip the stored access flag, and re-issue
// the session cookie so the new claim takes effect immediately.
func (h *BillingHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	paid, err := h.billingService.ConfirmCheckout(ctx, req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to confirm checkout")
		respondAppError(w, err)
		return
	}
	if !paid {
		respondError(w, "checkout session not paid", http.StatusBadRequest)
		return
	}

	if err := h.userService.GrantAccess(ctx, session.UserID); err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to grant access")
		respondAppError(w, err)
		return
	}

	log.Info().Str("user_id", session.UserID).Msg("Access granted after payment")

	// Same refresh trigger as /auth/refresh, run here so the client does not
	// need a second round trip.
	h.auth.Refresh(w, r)
}
