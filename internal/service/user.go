// Package service implements the application logic between the HTTP API
// and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recipebox/recipebox-server/internal/auth"
	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/id"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// UserService handles account registration, login, and profile management.
type UserService struct {
	store        store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, tokenService *auth.TokenService, logger *slog.Logger) *UserService {
	return &UserService{
		store:        store,
		tokenService: tokenService,
		validator:    validation.New(),
		logger:       logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"max=255"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest contains the fields a user may change on their own
// account. Nil fields are left untouched.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=1024"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// Register creates a new user account. The email domain is lower-cased
// before storage; lookups are case-insensitive on the whole address.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.createAccount(ctx, req, false)
}

// RegisterSuperuser creates an administrative account with staff and
// superuser privileges. It is not reachable over HTTP; the
// createsuperuser command is its only caller.
func (s *UserService) RegisterSuperuser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.createAccount(ctx, req, true)
}

func (s *UserService) createAccount(ctx context.Context, req RegisterRequest, superuser bool) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           userID,
		Email:        domain.NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Name:         req.Name,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// A duplicate email is reported as a field error, the same
			// shape the client gets for any other bad registration input.
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"email": "email already in use",
			})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if superuser {
		s.logger.Info("Superuser registered", "user_id", userID)
	} else {
		s.logger.Info("User registered", "user_id", userID)
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token.
// Bad credentials never reveal whether the email exists.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.InvalidCredentials("invalid email or password")
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return "", domainerrors.InvalidCredentials("invalid email or password")
	}

	if !user.IsActive {
		return "", domainerrors.Forbidden("account is disabled")
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return token, nil
}

// GetProfile returns the user's own account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update to the user's own account.
// A new password is re-hashed; a new email is normalized.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.Email != nil {
		user.Email = domain.NormalizeEmail(*req.Email)
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"email": "email already in use",
			})
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// VerifyAccessToken validates a token and loads the authenticated user.
func (s *UserService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, domainerrors.Unauthorized("account is disabled")
	}

	return user, nil
}
