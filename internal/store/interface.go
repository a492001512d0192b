// Package store defines the persistence interface for the RecipeBox server.
package store

import (
	"context"

	"github.com/recipebox/recipebox-server/internal/domain"
)

// RecipeFilter narrows recipe listings to recipes assigned the given
// tag or ingredient IDs. An empty slice means the facet is not filtered.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// Store defines the interface for all persistence operations.
//
// Every catalog operation takes the owning user's ID and is scoped to
// that user's rows; a row owned by someone else behaves as if it does
// not exist.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, id int64, userID string) (*domain.Tag, error)
	ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, id int64, userID string) error
	FindOrCreateTag(ctx context.Context, userID, name string) (*domain.Tag, bool, error)

	// Ingredients
	CreateIngredient(ctx context.Context, ing *domain.Ingredient) error
	GetIngredient(ctx context.Context, id int64, userID string) (*domain.Ingredient, error)
	ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*domain.Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error
	DeleteIngredient(ctx context.Context, id int64, userID string) error
	FindOrCreateIngredient(ctx context.Context, userID, name string) (*domain.Ingredient, bool, error)

	// Recipes
	CreateRecipe(ctx context.Context, r *domain.Recipe) error
	GetRecipe(ctx context.Context, id int64, userID string) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, userID string, filter RecipeFilter) ([]*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, r *domain.Recipe) error
	DeleteRecipe(ctx context.Context, id int64, userID string) error
}
