package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns the authenticated user's recipes, newest first, optionally filtered by tag or ingredient IDs",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe owned by the authenticated user",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a single recipe with its tags and ingredients",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceRecipe",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Replace recipe",
		Description: "Replaces all scalar fields of a recipe",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Applies a partial update to a recipe",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe and any attached image",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadRecipeImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes/{id}/image",
		Summary:     "Upload recipe image",
		Description: "Attaches an image to a recipe, replacing any existing one",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadRecipeImage)
}

// === DTOs ===

// RecipeResponse contains recipe data in API responses.
type RecipeResponse struct {
	ID          int64                `json:"id" doc:"Recipe ID"`
	Title       string               `json:"title" doc:"Recipe title"`
	TimeMinutes int                  `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       string               `json:"price" doc:"Price as a decimal string"`
	Description string               `json:"description,omitempty" doc:"Free-form description"`
	Link        string               `json:"link,omitempty" doc:"External link"`
	ImageURL    string               `json:"image_url,omitempty" doc:"URL of the attached image"`
	BlurHash    string               `json:"blur_hash,omitempty" doc:"Blurhash placeholder for the image"`
	Tags        []TagResponse        `json:"tags" doc:"Assigned tags"`
	Ingredients []IngredientResponse `json:"ingredients" doc:"Assigned ingredients"`
	CreatedAt   time.Time            `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time            `json:"updated_at" doc:"Last update time"`
}

func toRecipeResponse(r *domain.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.String(),
		Description: r.Description,
		Link:        r.Link,
		BlurHash:    r.BlurHash,
		Tags:        toTagResponses(r.Tags),
		Ingredients: toIngredientResponses(r.Ingredients),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.HasImage() {
		resp.ImageURL = "/recipe-images/" + r.ImageID
	}
	return resp
}

func toRecipeResponses(recipes []*domain.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, toRecipeResponse(r))
	}
	return out
}

// ListRecipesInput contains parameters for listing recipes.
type ListRecipesInput struct {
	Authorization string `header:"Authorization"`
	Tags          string `query:"tags" doc:"Comma-separated tag IDs to filter by"`
	Ingredients   string `query:"ingredients" doc:"Comma-separated ingredient IDs to filter by"`
}

// ListRecipesOutput wraps the recipe list response for Huma.
type ListRecipesOutput struct {
	Body []RecipeResponse
}

// NamedRef names a tag or ingredient inside a recipe payload.
type NamedRef struct {
	Name string `json:"name" doc:"Name"`
}

// CreateRecipeBody is the request body for creating a recipe.
type CreateRecipeBody struct {
	Title       string     `json:"title" doc:"Recipe title"`
	TimeMinutes int        `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       string     `json:"price" doc:"Price as a decimal string"`
	Description string     `json:"description,omitempty" doc:"Free-form description"`
	Link        string     `json:"link,omitempty" doc:"External link"`
	Tags        []NamedRef `json:"tags,omitempty" doc:"Tags to assign, created on demand"`
	Ingredients []NamedRef `json:"ingredients,omitempty" doc:"Ingredients to assign, created on demand"`
}

// CreateRecipeInput wraps the recipe creation request for Huma.
type CreateRecipeInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateRecipeBody
}

// RecipeOutput wraps a single recipe response for Huma.
type RecipeOutput struct {
	Body RecipeResponse
}

// GetRecipeInput contains parameters for fetching a recipe.
type GetRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Recipe ID"`
}

// ReplaceRecipeInput wraps the full-update request for Huma.
type ReplaceRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Recipe ID"`
	Body          CreateRecipeBody
}

// UpdateRecipeBody is the request body for a partial recipe update.
// Absent fields are left untouched; an empty tags or ingredients list
// clears the relation.
type UpdateRecipeBody struct {
	Title       *string     `json:"title,omitempty" doc:"Recipe title"`
	TimeMinutes *int        `json:"time_minutes,omitempty" doc:"Preparation time in minutes"`
	Price       *string     `json:"price,omitempty" doc:"Price as a decimal string"`
	Description *string     `json:"description,omitempty" doc:"Free-form description"`
	Link        *string     `json:"link,omitempty" doc:"External link"`
	Tags        *[]NamedRef `json:"tags,omitempty" doc:"Replacement tag set"`
	Ingredients *[]NamedRef `json:"ingredients,omitempty" doc:"Replacement ingredient set"`
}

// UpdateRecipeInput wraps the partial-update request for Huma.
type UpdateRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Recipe ID"`
	Body          UpdateRecipeBody
}

// DeleteRecipeInput contains parameters for deleting a recipe.
type DeleteRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Recipe ID"`
}

// UploadRecipeImageInput carries the raw image bytes for an upload.
type UploadRecipeImageInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Recipe ID"`
	ContentType   string `header:"Content-Type"`
	RawBody       []byte
}

func toTagInputs(refs []NamedRef) []service.TagInput {
	out := make([]service.TagInput, 0, len(refs))
	for _, ref := range refs {
		out = append(out, service.TagInput{Name: ref.Name})
	}
	return out
}

func toIngredientInputs(refs []NamedRef) []service.IngredientInput {
	out := make([]service.IngredientInput, 0, len(refs))
	for _, ref := range refs {
		out = append(out, service.IngredientInput{Name: ref.Name})
	}
	return out
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.List(ctx, userID, service.ListRecipesRequest{
		Tags:        input.Tags,
		Ingredients: input.Ingredients,
	})
	if err != nil {
		return nil, err
	}

	return &ListRecipesOutput{Body: toRecipeResponses(recipes)}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Create(ctx, userID, service.CreateRecipeRequest{
		Title:       input.Body.Title,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       input.Body.Price,
		Description: input.Body.Description,
		Link:        input.Body.Link,
		Tags:        toTagInputs(input.Body.Tags),
		Ingredients: toIngredientInputs(input.Body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: toRecipeResponse(recipe)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *GetRecipeInput) (*RecipeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: toRecipeResponse(recipe)}, nil
}

func (s *Server) handleReplaceRecipe(ctx context.Context, input *ReplaceRecipeInput) (*RecipeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	// A replace rewrites every scalar field. Tag and ingredient sets are
	// only touched when the payload names them.
	req := service.UpdateRecipeRequest{
		Title:       &input.Body.Title,
		TimeMinutes: &input.Body.TimeMinutes,
		Price:       &input.Body.Price,
		Description: &input.Body.Description,
		Link:        &input.Body.Link,
	}
	if input.Body.Tags != nil {
		tags := toTagInputs(input.Body.Tags)
		req.Tags = &tags
	}
	if input.Body.Ingredients != nil {
		ingredients := toIngredientInputs(input.Body.Ingredients)
		req.Ingredients = &ingredients
	}

	recipe, err := s.services.Recipe.Update(ctx, userID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: toRecipeResponse(recipe)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.UpdateRecipeRequest{
		Title:       input.Body.Title,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       input.Body.Price,
		Description: input.Body.Description,
		Link:        input.Body.Link,
	}
	if input.Body.Tags != nil {
		tags := toTagInputs(*input.Body.Tags)
		req.Tags = &tags
	}
	if input.Body.Ingredients != nil {
		ingredients := toIngredientInputs(*input.Body.Ingredients)
		req.Ingredients = &ingredients
	}

	recipe, err := s.services.Recipe.Update(ctx, userID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: toRecipeResponse(recipe)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *DeleteRecipeInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleUploadRecipeImage(ctx context.Context, input *UploadRecipeImageInput) (*RecipeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if input.ContentType != "" && !strings.HasPrefix(input.ContentType, "image/") {
		return nil, domainerrors.Validation("uploaded content type is not an image")
	}

	recipe, err := s.services.Recipe.AttachImage(ctx, userID, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: toRecipeResponse(recipe)}, nil
}
