package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hannatrush/PetSoft/internal/apperr"
	"github.com/hannatrush/PetSoft/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxEmailLength    = 254
	defaultTokenTTL   = 24 * time.Hour
)

// UserStore is the credential store the user service depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetHasAccess(ctx context.Context, userID string, hasAccess bool) error
}

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	HasAccess bool   `json:"has_access"`
}

// UserService handles sign-up, login, and session token lifecycle
type UserService struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewUserService creates a new user service
func NewUserService(users UserStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// SignUp creates a new account and returns it with a signed session token.
// A taken email yields apperr.ErrDuplicateEmail without a second record.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, string, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New().String(),
		Email:          email,
		HashedPassword: string(hashed),
		HasAccess:      false,
		CreatedAt:      time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrDuplicateEmail) {
			return nil, "", apperr.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LogIn verifies credentials and returns the user with a fresh session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) LogIn(ctx context.Context, email, password string) (*models.User, string, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a session token for the user with its current access flag.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:    user.ID,
		Email:     user.Email,
		HasAccess: user.HasAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token and returns its claims.
func (s *UserService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken re-issues a session token with the access flag re-read from the
// store, so a completed payment is reflected without a new login.
func (s *UserService) RefreshToken(ctx context.Context, tokenString string) (*models.User, string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", apperr.ErrInvalidToken
		}
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GrantAccess flips the stored access flag after a confirmed payment.
func (s *UserService) GrantAccess(ctx context.Context, userID string) error {
	if err := s.users.SetHasAccess(ctx, userID, true); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

// validateCredentials normalizes the email and checks both fields, returning
// apperr.ErrInvalidInput on anything malformed.
func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > maxEmailLength {
		return "", apperr.ErrInvalidInput
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return "", apperr.ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return "", apperr.ErrInvalidInput
	}
	return email, nil
}
