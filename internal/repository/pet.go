package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hannatrush/PetSoft/internal/apperr"
	"github.com/hannatrush/PetSoft/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PetRepository handles database operations for pets
type PetRepository struct {
	db *pgxpool.Pool
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db}
}

// Create inserts a new pet
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	query := `
		INSERT INTO pets (id, user_id, name, owner_name, image_url, age, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		pet.ID, pet.UserID, pet.Name, pet.OwnerName, pet.ImageURL, pet.Age, pet.Notes, pet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id string) (*models.Pet, error) {
	query := `
		SELECT id, user_id, name, owner_name, image_url, age, notes, created_at
		FROM pets
		WHERE id = $1
	`
	var pet models.Pet
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pet.ID, &pet.UserID, &pet.Name, &pet.OwnerName,
		&pet.ImageURL, &pet.Age, &pet.Notes, &pet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

// ListByOwner retrieves all pets owned by a user, oldest first
func (r *PetRepository) ListByOwner(ctx context.Context, userID string) ([]models.Pet, error) {
	query := `
		SELECT id, user_id, name, owner_name, image_url, age, notes, created_at
		FROM pets
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	pets := make([]models.Pet, 0)
	for rows.Next() {
		var pet models.Pet
		if err := rows.Scan(
			&pet.ID, &pet.UserID, &pet.Name, &pet.OwnerName,
			&pet.ImageURL, &pet.Age, &pet.Notes, &pet.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pets: %w", err)
	}
	return pets, nil
}

// Update overwrites the mutable fields of a pet in a single statement, so
// concurrent writes to the same row serialize at the database.
func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	query := `
		UPDATE pets
		SET name = $1, owner_name = $2, image_url = $3, age = $4, notes = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query,
		pet.Name, pet.OwnerName, pet.ImageURL, pet.Age, pet.Notes, pet.ID)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes a pet by ID
func (r *PetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM pets WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
