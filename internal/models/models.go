package models

import "time"

// User represents a registered account. HasAccess flips to true once the
// one-time checkout completes and gates everything under /app.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	HasAccess      bool      `json:"has_access"`
	CreatedAt      time.Time `json:"created_at"`
}

// Pet represents a pet record owned by exactly one user.
type Pet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	OwnerName string    `json:"owner_name"`
	ImageURL  string    `json:"image_url"`
	Age       int       `json:"age"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// PetEssentials is the client-supplied portion of a pet record. The owning
// user id is never part of it; it is bound from the session on the server.
type PetEssentials struct {
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	ImageURL  string `json:"image_url"`
	Age       int    `json:"age"`
	Notes     string `json:"notes"`
}

// Apply copies the essentials onto an existing pet, leaving identity and
// ownership untouched.
func (e PetEssentials) Apply(p *Pet) {
	p.Name = e.Name
	p.OwnerName = e.OwnerName
	p.ImageURL = e.ImageURL
	p.Age = e.Age
	p.Notes = e.Notes
}
