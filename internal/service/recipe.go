package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// RecipeService manages a user's recipes, including tag and ingredient
// reconciliation and image attachment.
type RecipeService struct {
	store      store.Store
	processor  *images.Processor
	imageStore *images.Storage
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(store store.Store, processor *images.Processor, imageStore *images.Storage, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:      store,
		processor:  processor,
		imageStore: imageStore,
		validator:  validation.New(),
		logger:     logger,
	}
}

// TagInput names a tag inside a recipe payload.
type TagInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// IngredientInput names an ingredient inside a recipe payload.
type IngredientInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateRecipeRequest contains recipe data for the create operation.
// Any owner field in the payload is ignored; the caller always owns the
// new recipe.
type CreateRecipeRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	TimeMinutes int               `json:"time_minutes" validate:"gte=0"`
	Price       string            `json:"price" validate:"required"`
	Description string            `json:"description,omitempty"`
	Link        string            `json:"link,omitempty" validate:"omitempty,max=255"`
	Tags        []TagInput        `json:"tags,omitempty" validate:"dive"`
	Ingredients []IngredientInput `json:"ingredients,omitempty" validate:"dive"`
}

// UpdateRecipeRequest contains a partial recipe update. Nil fields are
// left untouched; an empty Tags or Ingredients slice clears the relation.
type UpdateRecipeRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,max=255"`
	TimeMinutes *int               `json:"time_minutes,omitempty" validate:"omitempty,gte=0"`
	Price       *string            `json:"price,omitempty"`
	Description *string            `json:"description,omitempty"`
	Link        *string            `json:"link,omitempty" validate:"omitempty,max=255"`
	Tags        *[]TagInput        `json:"tags,omitempty" validate:"omitempty,dive"`
	Ingredients *[]IngredientInput `json:"ingredients,omitempty" validate:"omitempty,dive"`
}

// ListRecipesRequest carries the optional comma-separated ID filters.
type ListRecipesRequest struct {
	Tags        string
	Ingredients string
}

// List returns the user's recipes, newest first, optionally filtered by
// comma-separated tag and ingredient IDs.
func (s *RecipeService) List(ctx context.Context, userID string, req ListRecipesRequest) ([]*domain.Recipe, error) {
	tagIDs, err := parseIDList("tags", req.Tags)
	if err != nil {
		return nil, err
	}
	ingredientIDs, err := parseIDList("ingredients", req.Ingredients)
	if err != nil {
		return nil, err
	}

	return s.store.ListRecipes(ctx, userID, store.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
}

// Get returns a single recipe owned by the user.
func (s *RecipeService) Get(ctx context.Context, userID string, recipeID int64) (*domain.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, recipeID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// Create makes a new recipe owned by the user. Nested tags and ingredients
// are resolved against the caller's namespace: an existing (owner, name)
// row is reused, anything else is created.
func (s *RecipeService) Create(ctx context.Context, userID string, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	price, err := domain.ParsePrice(req.Price)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"price": "must be a decimal with at most two places"})
	}

	tags, err := s.resolveTags(ctx, userID, req.Tags)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.resolveIngredients(ctx, userID, req.Ingredients)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &domain.Recipe{
		UserID:      userID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       price,
		Description: req.Description,
		Link:        req.Link,
		Tags:        tags,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateRecipe(ctx, r); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.logger.Info("Recipe created", "recipe_id", r.ID, "user_id", userID)
	return r, nil
}

// Update applies a partial update to a recipe owned by the user. Scalar
// changes and membership replacement commit atomically.
func (s *RecipeService) Update(ctx context.Context, userID string, recipeID int64, req UpdateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	r, err := s.store.GetRecipe(ctx, recipeID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.TimeMinutes != nil {
		r.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		price, err := domain.ParsePrice(*req.Price)
		if err != nil {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"price": "must be a decimal with at most two places"})
		}
		r.Price = price
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Link != nil {
		r.Link = *req.Link
	}
	if req.Tags != nil {
		tags, err := s.resolveTags(ctx, userID, *req.Tags)
		if err != nil {
			return nil, err
		}
		r.Tags = tags
	}
	if req.Ingredients != nil {
		ingredients, err := s.resolveIngredients(ctx, userID, *req.Ingredients)
		if err != nil {
			return nil, err
		}
		r.Ingredients = ingredients
	}
	r.Touch()

	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	return r, nil
}

// Delete removes a recipe owned by the user, along with its stored image
// if one is attached.
func (s *RecipeService) Delete(ctx context.Context, userID string, recipeID int64) error {
	r, err := s.store.GetRecipe(ctx, recipeID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("recipe not found")
		}
		return fmt.Errorf("get recipe: %w", err)
	}

	if err := s.store.DeleteRecipe(ctx, recipeID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("recipe not found")
		}
		return fmt.Errorf("delete recipe: %w", err)
	}

	if r.HasImage() {
		if err := s.imageStore.Delete(r.ImageID); err != nil {
			s.logger.Warn("Failed to delete recipe image", "image_id", r.ImageID, "error", err)
		}
	}

	s.logger.Info("Recipe deleted", "recipe_id", recipeID, "user_id", userID)
	return nil
}

// AttachImage stores an uploaded image and links it to a recipe owned by
// the user. A previously attached image is removed from storage.
func (s *RecipeService) AttachImage(ctx context.Context, userID string, recipeID int64, data []byte) (*domain.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, recipeID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	result, err := s.processor.Process(data)
	if err != nil {
		return nil, domainerrors.Validation("uploaded file is not a valid image")
	}

	oldImageID := r.ImageID
	r.ImageID = result.ImageID
	r.BlurHash = result.BlurHash
	r.Touch()

	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		// Roll back the orphaned file.
		if delErr := s.imageStore.Delete(result.ImageID); delErr != nil {
			s.logger.Warn("Failed to clean up image", "image_id", result.ImageID, "error", delErr)
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if oldImageID != "" {
		if err := s.imageStore.Delete(oldImageID); err != nil {
			s.logger.Warn("Failed to delete replaced image", "image_id", oldImageID, "error", err)
		}
	}

	return r, nil
}

// GetImage returns the raw bytes of a stored recipe image.
func (s *RecipeService) GetImage(_ context.Context, imageID string) ([]byte, error) {
	data, err := s.imageStore.Get(imageID)
	if err != nil {
		return nil, domainerrors.NotFound("image not found")
	}
	return data, nil
}

// resolveTags maps nested tag payloads onto store rows, creating missing
// names under the caller's ownership. Duplicate names collapse.
func (s *RecipeService) resolveTags(ctx context.Context, userID string, inputs []TagInput) ([]*domain.Tag, error) {
	seen := make(map[string]bool, len(inputs))
	tags := make([]*domain.Tag, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true

		tag, _, err := s.store.FindOrCreateTag(ctx, userID, in.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", in.Name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// resolveIngredients is the ingredient counterpart of resolveTags.
func (s *RecipeService) resolveIngredients(ctx context.Context, userID string, inputs []IngredientInput) ([]*domain.Ingredient, error) {
	seen := make(map[string]bool, len(inputs))
	ingredients := make([]*domain.Ingredient, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true

		ing, _, err := s.store.FindOrCreateIngredient(ctx, userID, in.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve ingredient %q: %w", in.Name, err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

// parseIDList parses a comma-separated list of integer IDs. A non-integer
// element is a validation error; an empty string yields no filter.
func parseIDList(field, csv string) ([]int64, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}

	parts := strings.Split(csv, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{field: "must be a comma-separated list of integer IDs"})
		}
		ids = append(ids, id)
	}
	return ids, nil
}
