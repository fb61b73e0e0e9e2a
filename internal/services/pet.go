package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hannatrush/PetSoft/internal/apperr"
	"github.com/hannatrush/PetSoft/internal/models"

	"github.com/google/uuid"
)

// PetStore is the persistence layer the pet service depends on.
type PetStore interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id string) (*models.Pet, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, id string) error
}

// PetService handles pet business logic. Ownership is bound from the session
// at creation and re-verified on every mutation; the client is never trusted.
type PetService struct {
	pets PetStore
}

// NewPetService creates a new pet service
func NewPetService(pets PetStore) *PetService {
	return &PetService{pets: pets}
}

// List returns all pets owned by the user.
func (s *PetService) List(ctx context.Context, ownerID string) ([]models.Pet, error) {
	pets, err := s.pets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return pets, nil
}

// Add creates a pet owned by ownerID.
func (s *PetService) Add(ctx context.Context, ownerID string, essentials models.PetEssentials) (*models.Pet, error) {
	if err := validatePet(essentials); err != nil {
		return nil, err
	}

	pet := &models.Pet{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		CreatedAt: time.Now(),
	}
	essentials.Apply(pet)

	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return pet, nil
}

// Edit updates a pet after verifying it exists and belongs to ownerID. The
// ownership check happens before any write, so a rejected edit leaves the
// stored pet untouched.
func (s *PetService) Edit(ctx context.Context, ownerID, petID string, essentials models.PetEssentials) (*models.Pet, error) {
	if petID == "" {
		return nil, apperr.ErrInvalidInput
	}
	if err := validatePet(essentials); err != nil {
		return nil, err
	}

	pet, err := s.authorize(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	essentials.Apply(pet)
	if err := s.pets.Update(ctx, pet); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return pet, nil
}

// Delete removes a pet under the same ownership check as Edit.
func (s *PetService) Delete(ctx context.Context, ownerID, petID string) error {
	if petID == "" {
		return apperr.ErrInvalidInput
	}

	if _, err := s.authorize(ctx, ownerID, petID); err != nil {
		return err
	}

	if err := s.pets.Delete(ctx, petID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

// authorize fetches the pet and verifies ownership.
func (s *PetService) authorize(ctx context.Context, ownerID, petID string) (*models.Pet, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	if pet.UserID != ownerID {
		return nil, apperr.ErrForbidden
	}
	return pet, nil
}

func validatePet(e models.PetEssentials) error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.OwnerName) == "" {
		return apperr.ErrInvalidInput
	}
	if e.Age < 0 {
		return apperr.ErrInvalidInput
	}
	if e.ImageURL != "" &&
		!strings.HasPrefix(e.ImageURL, "http://") && !strings.HasPrefix(e.ImageURL, "https://") {
		return apperr.ErrInvalidInput
	}
	return nil
}
