package petstate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hannatrush/PetSoft/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeActions lets each server call block until released and fail on demand.
type fakeActions struct {
	mu      sync.Mutex
	block   chan struct{}
	addErr  error
	editErr error
	delErr  error

	adds    []models.PetEssentials
	edits   map[string]models.PetEssentials
	deletes []string
}

func newFakeActions() *fakeActions {
	return &fakeActions{edits: make(map[string]models.PetEssentials)}
}

func (f *fakeActions) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeActions) AddPet(_ context.Context, e models.PetEssentials) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.adds = append(f.adds, e)
	return nil
}

func (f *fakeActions) EditPet(_ context.Context, id string, e models.PetEssentials) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits[id] = e
	return nil
}

func (f *fakeActions) DeletePet(_ context.Context, id string) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func twoPets() []models.Pet {
	return []models.Pet{
		{ID: "p1", UserID: "u1", Name: "Rex", OwnerName: "Ann", Age: 3},
		{ID: "p2", UserID: "u1", Name: "Mia", OwnerName: "Bob", Age: 5},
	}
}

func TestAdd_VisibleBeforeServerResolves(t *testing.T) {
	actions := newFakeActions()
	actions.block = make(chan struct{})
	c := New(twoPets(), actions, nil)

	c.Add(context.Background(), models.PetEssentials{Name: "Taro", OwnerName: "Cy"})

	// The server call is still parked on the block channel, yet the list
	// already shows the new pet under a temp id.
	pets := c.Pets()
	require.Len(t, pets, 3)
	assert.Equal(t, "Taro", pets[2].Name)
	assert.Contains(t, pets[2].ID, "tmp-")

	close(actions.block)
	c.Flush()
	assert.Len(t, actions.adds, 1)
}

func TestAdd_RollbackOnFailure(t *testing.T) {
	actions := newFakeActions()
	actions.addErr = errors.New("boom")

	var warned string
	c := New(twoPets(), actions, func(msg string) { warned = msg })

	c.Add(context.Background(), models.PetEssentials{Name: "Taro", OwnerName: "Cy"})
	c.Flush()

	assert.Equal(t, 2, c.Count())
	assert.Equal(t, "Could not add pet", warned)
}

func TestEdit_PatchesOnlyTargetPet(t *testing.T) {
	actions := newFakeActions()
	c := New(twoPets(), actions, nil)

	c.Edit(context.Background(), "p1", models.PetEssentials{Name: "Rexy", OwnerName: "Ann", Age: 4})
	c.Edit(context.Background(), "p2", models.PetEssentials{Name: "Mia", OwnerName: "Bob", Age: 6})
	c.Flush()

	pets := c.Pets()
	require.Len(t, pets, 2)
	assert.Equal(t, "Rexy", pets[0].Name)
	assert.Equal(t, 4, pets[0].Age)
	assert.Equal(t, "Mia", pets[1].Name)
	assert.Equal(t, 6, pets[1].Age)
}

func TestEdit_RollbackRestoresPriorData(t *testing.T) {
	actions := newFakeActions()
	actions.editErr = errors.New("boom")

	var warned string
	c := New(twoPets(), actions, func(msg string) { warned = msg })

	c.Edit(context.Background(), "p1", models.PetEssentials{Name: "Rexy", OwnerName: "Ann"})
	c.Flush()

	assert.Equal(t, "Rex", c.Pets()[0].Name)
	assert.Equal(t, "Could not edit pet", warned)
}

func TestDelete_RemovesAndClearsMatchingSelection(t *testing.T) {
	actions := newFakeActions()
	c := New(twoPets(), actions, nil)

	c.Select("p1")
	c.Delete(context.Background(), "p1")

	// Removed from the visible list and deselected immediately, before the
	// server call completes.
	assert.Equal(t, 1, c.Count())
	_, ok := c.SelectedPet()
	assert.False(t, ok)

	c.Flush()
	assert.Equal(t, []string{"p1"}, actions.deletes)
}

func TestDelete_KeepsUnrelatedSelection(t *testing.T) {
	actions := newFakeActions()
	c := New(twoPets(), actions, nil)

	c.Select("p2")
	c.Delete(context.Background(), "p1")
	c.Flush()

	selected, ok := c.SelectedPet()
	require.True(t, ok)
	assert.Equal(t, "p2", selected.ID)
}

func TestDelete_RollbackOnFailure(t *testing.T) {
	actions := newFakeActions()
	actions.delErr = errors.New("boom")

	var warned string
	c := New(twoPets(), actions, func(msg string) { warned = msg })

	c.Delete(context.Background(), "p2")
	c.Flush()

	assert.Equal(t, 2, c.Count())
	assert.Equal(t, "Could not delete pet", warned)
}

func TestReconcile_SupersedesTempEntries(t *testing.T) {
	actions := newFakeActions()
	c := New(nil, actions, nil)

	c.Add(context.Background(), models.PetEssentials{Name: "Taro", OwnerName: "Cy"})
	c.Flush()

	// The next authoritative refresh carries the server-assigned id; the temp
	// entry disappears with the overlay.
	c.Reconcile([]models.Pet{{ID: "p9", UserID: "u1", Name: "Taro", OwnerName: "Cy"}})

	pets := c.Pets()
	require.Len(t, pets, 1)
	assert.Equal(t, "p9", pets[0].ID)
}

func TestFilteredPets_MatchesNameCaseInsensitively(t *testing.T) {
	actions := newFakeActions()
	c := New(twoPets(), actions, nil)

	// Empty query leaves the view unfiltered.
	assert.Len(t, c.FilteredPets(), 2)

	c.SetSearchQuery("  RE ")
	assert.Equal(t, "  RE ", c.SearchQuery())

	filtered := c.FilteredPets()
	require.Len(t, filtered, 1)
	assert.Equal(t, "Rex", filtered[0].Name)

	c.SetSearchQuery("zz")
	assert.Empty(t, c.FilteredPets())

	// Clearing the query restores the full list; nothing was dropped.
	c.SetSearchQuery("")
	assert.Len(t, c.FilteredPets(), 2)
}

func TestFilteredPets_SeesOptimisticEntries(t *testing.T) {
	actions := newFakeActions()
	actions.block = make(chan struct{})
	c := New(twoPets(), actions, nil)

	c.SetSearchQuery("taro")
	c.Add(context.Background(), models.PetEssentials{Name: "Taro", OwnerName: "Cy"})

	// The speculative add shows through the filter before the server call
	// resolves, and the selection is independent of the filter.
	c.Select("p1")
	filtered := c.FilteredPets()
	require.Len(t, filtered, 1)
	assert.Equal(t, "Taro", filtered[0].Name)

	selected, ok := c.SelectedPet()
	require.True(t, ok)
	assert.Equal(t, "p1", selected.ID)

	close(actions.block)
	c.Flush()
}

func TestSelectedPet_GoneAfterRemoteDelete(t *testing.T) {
	actions := newFakeActions()
	c := New(twoPets(), actions, nil)

	c.Select("p1")
	c.Reconcile([]models.Pet{{ID: "p2", UserID: "u1", Name: "Mia", OwnerName: "Bob"}})

	_, ok := c.SelectedPet()
	assert.False(t, ok)
}
