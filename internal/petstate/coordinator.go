// Package petstate implements the client-side view of a user's pet list with
// optimistic mutations: every add/edit/delete is visible immediately, the
// matching server call runs in the background, and a failed call rolls the
// speculative change back and surfaces a warning.
package petstate

import (
	"context"
	"strings"
	"sync"

	"github.com/hannatrush/PetSoft/internal/models"

	"github.com/google/uuid"
)

// ServerActions are the server mutations the coordinator drives. Calls for
// different pets may complete out of order; the coordinator never serializes
// them.
type ServerActions interface {
	AddPet(ctx context.Context, essentials models.PetEssentials) error
	EditPet(ctx context.Context, petID string, essentials models.PetEssentials) error
	DeletePet(ctx context.Context, petID string) error
}

// WarnFunc receives user-facing warnings when a server mutation fails.
type WarnFunc func(message string)

type opKind int

const (
	opAdd opKind = iota
	opEdit
	opDelete
)

// pendingOp is one speculative mutation not yet superseded by an
// authoritative refresh. Adds carry a locally generated temp id; edits patch
// exactly the entry with their id.
type pendingOp struct {
	kind opKind
	id   string
	data models.PetEssentials
}

// Coordinator holds the last authoritative snapshot plus the pending-op
// overlay. The visible list is always the pure fold of pending over
// confirmed, so reads never observe a half-applied mutation.
type Coordinator struct {
	mu          sync.Mutex
	confirmed   []models.Pet
	pending     []pendingOp
	selectedID  string
	searchQuery string

	actions  ServerActions
	warn     WarnFunc
	inFlight sync.WaitGroup
}

// New creates a coordinator seeded with the authoritative pet list.
func New(confirmed []models.Pet, actions ServerActions, warn WarnFunc) *Coordinator {
	if warn == nil {
		warn = func(string) {}
	}
	return &Coordinator{
		confirmed: append([]models.Pet(nil), confirmed...),
		actions:   actions,
		warn:      warn,
	}
}

// Pets returns the visible list: confirmed state with the pending overlay
// applied in order.
func (c *Coordinator) Pets() []models.Pet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Count returns the number of visible pets.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visibleLocked())
}

// SetSearchQuery updates the search filter applied by FilteredPets. It only
// narrows the view; the underlying list and selection are untouched.
func (c *Coordinator) SetSearchQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchQuery = query
}

// SearchQuery returns the current search filter.
func (c *Coordinator) SearchQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchQuery
}

// FilteredPets returns the visible list narrowed to pets whose name contains
// the search query, case-insensitively. An empty query matches everything.
func (c *Coordinator) FilteredPets() []models.Pet {
	c.mu.Lock()
	defer c.mu.Unlock()

	pets := c.visibleLocked()
	query := strings.ToLower(strings.TrimSpace(c.searchQuery))
	if query == "" {
		return pets
	}

	filtered := pets[:0]
	for _, pet := range pets {
		if strings.Contains(strings.ToLower(pet.Name), query) {
			filtered = append(filtered, pet)
		}
	}
	return filtered
}

// Select marks a pet as selected.
func (c *Coordinator) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = id
}

// SelectedPet derives the selection from the visible list. After the selected
// pet is deleted, locally or by a refresh, there is no selection until the
// user picks again.
func (c *Coordinator) SelectedPet() (models.Pet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == "" {
		return models.Pet{}, false
	}
	for _, pet := range c.visibleLocked() {
		if pet.ID == c.selectedID {
			return pet, true
		}
	}
	return models.Pet{}, false
}

// Add appends the pet to the visible list immediately under a temp id and
// invokes the server create in the background. On failure the speculative
// entry is rolled back and the warning callback fires.
func (c *Coordinator) Add(ctx context.Context, essentials models.PetEssentials) {
	op := pendingOp{kind: opAdd, id: "tmp-" + uuid.New().String(), data: essentials}

	c.mu.Lock()
	c.pending = append(c.pending, op)
	c.mu.Unlock()

	c.dispatch(op, func() error {
		return c.actions.AddPet(ctx, essentials)
	}, "Could not add pet")
}

// Edit patches the matching visible entry immediately and invokes the server
// update in the background. The patch is keyed by pet id, so concurrent edits
// to different pets never touch each other's fields.
func (c *Coordinator) Edit(ctx context.Context, petID string, essentials models.PetEssentials) {
	op := pendingOp{kind: opEdit, id: petID, data: essentials}

	c.mu.Lock()
	c.pending = append(c.pending, op)
	c.mu.Unlock()

	c.dispatch(op, func() error {
		return c.actions.EditPet(ctx, petID, essentials)
	}, "Could not edit pet")
}

// Delete removes the entry from the visible list immediately and invokes the
// server delete in the background. A matching selection is cleared at once,
// regardless of how the server call turns out.
func (c *Coordinator) Delete(ctx context.Context, petID string) {
	op := pendingOp{kind: opDelete, id: petID}

	c.mu.Lock()
	c.pending = append(c.pending, op)
	if c.selectedID == petID {
		c.selectedID = ""
	}
	c.mu.Unlock()

	c.dispatch(op, func() error {
		return c.actions.DeletePet(ctx, petID)
	}, "Could not delete pet")
}

// Reconcile replaces the confirmed snapshot with a fresh authoritative list
// and discards the pending overlay; server state supersedes speculation.
func (c *Coordinator) Reconcile(pets []models.Pet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed = append([]models.Pet(nil), pets...)
	c.pending = nil
}

// Flush blocks until every in-flight server call has completed.
func (c *Coordinator) Flush() {
	c.inFlight.Wait()
}

// dispatch runs the server call without blocking the caller and rolls the
// optimistic op back if the call fails.
func (c *Coordinator) dispatch(op pendingOp, call func() error, warning string) {
	c.inFlight.Add(1)
	go func() {
		defer c.inFlight.Done()
		if err := call(); err != nil {
			c.rollback(op)
			c.warn(warning)
		}
	}()
}

// rollback removes the first pending op identical to the rejected one; the
// visible list immediately reverts to what the remaining ops produce.
func (c *Coordinator) rollback(op pendingOp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p == op {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// visibleLocked folds the pending overlay over the confirmed snapshot.
// Callers must hold c.mu.
func (c *Coordinator) visibleLocked() []models.Pet {
	pets := append([]models.Pet(nil), c.confirmed...)
	for _, op := range c.pending {
		switch op.kind {
		case opAdd:
			pet := models.Pet{ID: op.id}
			op.data.Apply(&pet)
			pets = append(pets, pet)
		case opEdit:
			for i := range pets {
				if pets[i].ID == op.id {
					op.data.Apply(&pets[i])
					break
				}
			}
		case opDelete:
			for i := range pets {
				if pets[i].ID == op.id {
					pets = append(pets[:i], pets[i+1:]...)
					break
				}
			}
		}
	}
	return pets
}
