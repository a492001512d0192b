package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// IngredientService manages a user's recipe ingredients.
type IngredientService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIngredientService creates a new ingredient service.
func NewIngredientService(store store.Store, logger *slog.Logger) *IngredientService {
	return &IngredientService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
	}
}

// IngredientRequest contains ingredient data for create and update
// operations.
type IngredientRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// List returns the user's ingredients, newest name first. With assignedOnly
// set, only ingredients attached to at least one recipe are returned.
func (s *IngredientService) List(ctx context.Context, userID string, assignedOnly bool) ([]*domain.Ingredient, error) {
	return s.store.ListIngredients(ctx, userID, assignedOnly)
}

// Create adds an ingredient owned by the user.
func (s *IngredientService) Create(ctx context.Context, userID string, req IngredientRequest) (*domain.Ingredient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ing, _, err := s.store.FindOrCreateIngredient(ctx, userID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	return ing, nil
}

// Update renames an ingredient owned by the user.
func (s *IngredientService) Update(ctx context.Context, userID string, ingredientID int64, req IngredientRequest) (*domain.Ingredient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ing, err := s.store.GetIngredient(ctx, ingredientID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("ingredient not found")
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}

	ing.Name = req.Name
	ing.Touch()

	if err := s.store.UpdateIngredient(ctx, ing); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("an ingredient with this name already exists")
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("ingredient not found")
		}
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	return ing, nil
}

// Delete removes an ingredient owned by the user.
func (s *IngredientService) Delete(ctx context.Context, userID string, ingredientID int64) error {
	if err := s.store.DeleteIngredient(ctx, ingredientID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("ingredient not found")
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}
	return nil
}
