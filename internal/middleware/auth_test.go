package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hannatrush/PetSoft/internal/apperr"
	"github.com/hannatrush/PetSoft/internal/models"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserStore struct {
	users map[string]*models.User
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (m *memUserStore) SetHasAccess(_ context.Context, id string, hasAccess bool) error {
	u, ok := m.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.HasAccess = hasAccess
	return nil
}

func newGatedHandler(svc *services.UserService) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(svc)(RouteGate(ok))
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouteGate_AnonymousRequests(t *testing.T) {
	t.Parallel()

	svc := services.NewUserService(&memUserStore{users: map[string]*models.User{}}, "secret", time.Hour)
	h := newGatedHandler(svc)

	rec := get(t, h, "/app/dashboard", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, get(t, h, "/", "").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/login", "").Code)
}

func TestRouteGate_InvalidTokenIsAnonymous(t *testing.T) {
	t.Parallel()

	svc := services.NewUserService(&memUserStore{users: map[string]*models.User{}}, "secret", time.Hour)
	h := newGatedHandler(svc)

	rec := get(t, h, "/app/dashboard", "garbage-token")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

// An unpaid user is bounced from the dashboard to payment; after access flips
// and the session is refreshed, the same request goes through.
func TestRouteGate_PaymentThenRefreshThenAllowed(t *testing.T) {
	t.Parallel()

	store := &memUserStore{users: map[string]*models.User{}}
	svc := services.NewUserService(store, "secret", time.Hour)
	h := newGatedHandler(svc)
	ctx := context.Background()

	user, token, err := svc.SignUp(ctx, "ann@example.com", "hunter2hunter2")
	require.NoError(t, err)

	rec := get(t, h, "/app/dashboard", token)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/payment", rec.Header().Get("Location"))

	// Payment completes; the old token still carries has_access=false.
	require.NoError(t, svc.GrantAccess(ctx, user.ID))
	rec = get(t, h, "/app/dashboard", token)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, refreshed, err := svc.RefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, h, "/app/dashboard", refreshed).Code)

	// And a paid user has no business on the login form.
	rec = get(t, h, "/login", refreshed)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/app/dashboard", rec.Header().Get("Location"))
}

func TestRouteGate_UnpaidUserOnAuthPages(t *testing.T) {
	t.Parallel()

	store := &memUserStore{users: map[string]*models.User{}}
	svc := services.NewUserService(store, "secret", time.Hour)
	h := newGatedHandler(svc)

	_, token, err := svc.SignUp(context.Background(), "ann@example.com", "hunter2hunter2")
	require.NoError(t, err)

	rec := get(t, h, "/signup", token)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/payment", rec.Header().Get("Location"))

	// Public pages stay open.
	assert.Equal(t, http.StatusOK, get(t, h, "/", token).Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/payment", token).Code)
}

func TestRequireUserAndRequireAccess(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/pets", nil)
	rec := httptest.NewRecorder()
	RequireUser(ok).ServeHTTP(rec, anon)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The rejection body is well-formed JSON, same shape as handler errors.
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication required", body.Error)

	unpaid := anon.WithContext(WithSession(anon.Context(), &Session{UserID: "u1"}))
	rec = httptest.NewRecorder()
	RequireAccess(ok).ServeHTTP(rec, unpaid)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	paid := anon.WithContext(WithSession(anon.Context(), &Session{UserID: "u1", HasAccess: true}))
	rec = httptest.NewRecorder()
	RequireAccess(ok).ServeHTTP(rec, paid)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_BearerFallback(t *testing.T) {
	t.Parallel()

	store := &memUserStore{users: map[string]*models.User{}}
	svc := services.NewUserService(store, "secret", time.Hour)

	user, token, err := svc.SignUp(context.Background(), "ann@example.com", "hunter2hunter2")
	require.NoError(t, err)

	var seen *Session
	h := Authenticate(svc)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.UserID)
	assert.Equal(t, "ann@example.com", seen.Email)
}
