package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hannatrush/PetSoft/internal/middleware"
	"github.com/hannatrush/PetSoft/internal/models"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PetHandler handles pet-related HTTP requests
type PetHandler struct {
	petService *services.PetService
	hub        *services.RefreshHub
}

// NewPetHandler creates a new pet handler
func NewPetHandler(petService *services.PetService, hub *services.RefreshHub) *PetHandler {
	return &PetHandler{
		petService: petService,
		hub:        hub,
	}
}

// ListPets handles GET /api/v1/pets
func (h *PetHandler) ListPets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)

	pets, err := h.petService.List(ctx, session.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list pets")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pets)
}

// AddPet handles POST /api/v1/pets
func (h *PetHandler) AddPet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)

	var essentials models.PetEssentials
	if err := json.NewDecoder(r.Body).Decode(&essentials); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pet, err := h.petService.Add(ctx, session.UserID, essentials)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to add pet")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("pet_id", pet.ID).
		Msg("Pet added")

	h.hub.NotifyPetsUpdated(session.UserID)
	respondJSON(w, http.StatusCreated, pet)
}

// EditPet handles PUT /api/v1/pets/{pet_id}
func (h *PetHandler) EditPet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)
	petID := chi.URLParam(r, "pet_id")

	var essentials models.PetEssentials
	if err := json.NewDecoder(r.Body).Decode(&essentials); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pet, err := h.petService.Edit(ctx, session.UserID, petID, essentials)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", session.UserID).
			Str("pet_id", petID).
			Msg("Failed to edit pet")
		respondAppError(w, err)
		return
	}

	h.hub.NotifyPetsUpdated(session.UserID)
	respondJSON(w, http.StatusOK, pet)
}

// DeletePet handles DELETE /api/v1/pets/{pet_id}
func (h *PetHandler) DeletePet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)
	petID := chi.URLParam(r, "pet_id")

	if err := h.petService.Delete(ctx, session.UserID, petID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", session.UserID).
			Str("pet_id", petID).
			Msg("Failed to delete pet")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("pet_id", petID).
		Msg("Pet deleted")

	h.hub.NotifyPetsUpdated(session.UserID)
	w.WriteHeader(http.StatusNoContent)
}
