package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
)

func newTestTagService(t *testing.T) (*TagService, *UserService) {
	t.Helper()
	userSvc := newTestUserService(t)
	return NewTagService(userSvc.store, slog.New(slog.DiscardHandler)), userSvc
}

func registerUser(t *testing.T, userSvc *UserService, email string) string {
	t.Helper()
	user, err := userSvc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "testpass123",
	})
	require.NoError(t, err)
	return user.ID
}

func TestTagCreateAndList(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	ctx := context.Background()
	userID := registerUser(t, userSvc, "tags@example.com")

	_, err := svc.Create(ctx, userID, TagRequest{Name: "Vegan"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, TagRequest{Name: "Dessert"})
	require.NoError(t, err)

	tags, err := svc.List(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Vegan", tags[0].Name)
	assert.Equal(t, "Dessert", tags[1].Name)
}

func TestTagCreateDuplicateReturnsExisting(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	ctx := context.Background()
	userID := registerUser(t, userSvc, "dup@example.com")

	first, err := svc.Create(ctx, userID, TagRequest{Name: "Vegan"})
	require.NoError(t, err)

	second, err := svc.Create(ctx, userID, TagRequest{Name: "Vegan"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestTagCreateValidation(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	userID := registerUser(t, userSvc, "invalid@example.com")

	_, err := svc.Create(context.Background(), userID, TagRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestTagListScopedToOwner(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	ctx := context.Background()
	alice := registerUser(t, userSvc, "alice@example.com")
	bob := registerUser(t, userSvc, "bob@example.com")

	_, err := svc.Create(ctx, alice, TagRequest{Name: "Hers"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, TagRequest{Name: "His"})
	require.NoError(t, err)

	tags, err := svc.List(ctx, alice, false)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Hers", tags[0].Name)
}

func TestTagUpdate(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	ctx := context.Background()
	userID := registerUser(t, userSvc, "update@example.com")

	tag, err := svc.Create(ctx, userID, TagRequest{Name: "Before"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, userID, tag.ID, TagRequest{Name: "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
}

func TestTagUpdateNotOwned(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	ctx := context.Background()
	alice := registerUser(t, userSvc, "alice@example.com")
	bob := registerUser(t, userSvc, "bob@example.com")

	tag, err := svc.Create(ctx, alice, TagRequest{Name: "Hers"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, tag.ID, TagRequest{Name: "Mine Now"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestTagDelete(t *testing.T) {
	svc, userSvc := newTestTagService(t)
	ctx := context.Background()
	userID := registerUser(t, userSvc, "delete@example.com")

	tag, err := svc.Create(ctx, userID, TagRequest{Name: "Gone"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, userID, tag.ID))

	tags, err := svc.List(ctx, userID, false)
	require.NoError(t, err)
	assert.Empty(t, tags)

	err = svc.Delete(ctx, userID, tag.ID)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestIngredientCreateAndList(t *testing.T) {
	userSvc := newTestUserService(t)
	svc := NewIngredientService(userSvc.store, slog.New(slog.DiscardHandler))
	ctx := context.Background()
	userID := registerUser(t, userSvc, "ing@example.com")

	_, err := svc.Create(ctx, userID, IngredientRequest{Name: "Kale"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, IngredientRequest{Name: "Vanilla"})
	require.NoError(t, err)

	ingredients, err := svc.List(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Vanilla", ingredients[0].Name)
	assert.Equal(t, "Kale", ingredients[1].Name)
}

func TestIngredientUpdateNotOwned(t *testing.T) {
	userSvc := newTestUserService(t)
	svc := NewIngredientService(userSvc.store, slog.New(slog.DiscardHandler))
	ctx := context.Background()
	alice := registerUser(t, userSvc, "alice@example.com")
	bob := registerUser(t, userSvc, "bob@example.com")

	ing, err := svc.Create(ctx, alice, IngredientRequest{Name: "Salt"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, ing.ID, IngredientRequest{Name: "Pepper"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}
