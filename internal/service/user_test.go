package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/auth"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/store/sqlite"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.DiscardHandler)
	s, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	tokenService, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)
	return NewUserService(newTestStore(t), tokenService, slog.New(slog.DiscardHandler))
}

func TestRegister(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "test@EXAMPLE.com",
		Password: "testpass123",
		Name:     "Test Name",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(user.ID, "user-"))
	// Only the domain is lower-cased.
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "Test Name", user.Name)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "testpass123", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
}

func TestRegisterSuperuser(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.RegisterSuperuser(ctx, RegisterRequest{
		Email:    "admin@example.com",
		Password: "adminpass123",
		Name:     "Admin",
	})
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)

	// The flags survive a round trip through the store.
	got, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsSuperuser)

	// Superusers log in like any other account.
	_, err = svc.Login(ctx, LoginRequest{Email: "admin@example.com", Password: "adminpass123"})
	assert.NoError(t, err)
}

func TestRegisterPreservesLocalPartCase(t *testing.T) {
	svc := newTestUserService(t)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Test2@Example.com",
		Password: "testpass123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Test2@example.com", user.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "testpass123"}},
		{"invalid email", RegisterRequest{Email: "nope", Password: "testpass123"}},
		{"short password", RegisterRequest{Email: "test@example.com", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "testpass123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "DUP@EXAMPLE.COM", Password: "otherpass123"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestLogin(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "login@example.com", Password: "testpass123"})
	require.NoError(t, err)

	token, err := svc.Login(ctx, LoginRequest{Email: "login@example.com", Password: "testpass123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	verified, err := svc.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "Mixed@Example.com", Password: "testpass123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "mixed@example.COM", Password: "testpass123"})
	assert.NoError(t, err)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "bad@example.com", Password: "testpass123"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "bad@example.com", Password: "wrongpass"}},
		{"unknown email", LoginRequest{Email: "ghost@example.com", Password: "testpass123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
		})
	}
}

func TestGetProfile(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "me@example.com", Password: "testpass123", Name: "Me"})
	require.NoError(t, err)

	got, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)
	assert.Equal(t, "Me", got.Name)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "before@example.com", Password: "testpass123", Name: "Before"})
	require.NoError(t, err)

	name := "After"
	password := "newpass456"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		Name:     &name,
		Password: &password,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "before@example.com", updated.Email)

	// The old password no longer works, the new one does.
	_, err = svc.Login(ctx, LoginRequest{Email: "before@example.com", Password: "testpass123"})
	require.Error(t, err)
	_, err = svc.Login(ctx, LoginRequest{Email: "before@example.com", Password: "newpass456"})
	assert.NoError(t, err)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "partial@example.com", Password: "testpass123", Name: "Keep Me"})
	require.NoError(t, err)

	email := "renamed@Example.com"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", updated.Email)
	assert.Equal(t, "Keep Me", updated.Name)
}

func TestVerifyAccessTokenInvalid(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.VerifyAccessToken(context.Background(), "v4.local.garbage")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainErr.Code)
}
