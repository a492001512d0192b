package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/store"
)

func createTestRecipe(t *testing.T, s *Store, userID, title string, tags []*domain.Tag, ingredients []*domain.Ingredient) *domain.Recipe {
	t.Helper()
	now := time.Now().UTC()
	price, err := domain.ParsePrice("5.25")
	if err != nil {
		t.Fatalf("parse price: %v", err)
	}
	r := &domain.Recipe{
		UserID:      userID,
		Title:       title,
		TimeMinutes: 10,
		Price:       price,
		Tags:        tags,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("create recipe %s: %v", title, err)
	}
	return r
}

func TestCreateAndGetRecipe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "recipes@example.com")

	tag := createTestTag(t, s, u.ID, "Dessert")
	ing := createTestIngredient(t, s, u.ID, "Sugar")

	r := createTestRecipe(t, s, u.ID, "Chocolate Cake", []*domain.Tag{tag}, []*domain.Ingredient{ing})
	if r.ID == 0 {
		t.Fatal("expected generated recipe ID")
	}

	got, err := s.GetRecipe(ctx, r.ID, u.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got.Title != "Chocolate Cake" {
		t.Errorf("expected Chocolate Cake, got %s", got.Title)
	}
	if got.Price.String() != "5.25" {
		t.Errorf("expected price 5.25, got %s", got.Price.String())
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "Dessert" {
		t.Errorf("unexpected tags: %+v", got.Tags)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Name != "Sugar" {
		t.Errorf("unexpected ingredients: %+v", got.Ingredients)
	}
}

func TestGetRecipeScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")

	r := createTestRecipe(t, s, u.ID, "Secret Stew", nil, nil)

	if _, err := s.GetRecipe(ctx, r.ID, other.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestListRecipesOrderedByIDDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "list@example.com")
	other := createTestUser(t, s, "other@example.com")

	first := createTestRecipe(t, s, u.ID, "First", nil, nil)
	second := createTestRecipe(t, s, u.ID, "Second", nil, nil)
	createTestRecipe(t, s, other.ID, "Elsewhere", nil, nil)

	recipes, err := s.ListRecipes(ctx, u.ID, store.RecipeFilter{})
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].ID != second.ID || recipes[1].ID != first.ID {
		t.Errorf("expected newest first, got %d then %d", recipes[0].ID, recipes[1].ID)
	}
}

func TestListRecipesFilterByTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "filter@example.com")

	vegan := createTestTag(t, s, u.ID, "Vegan")
	quick := createTestTag(t, s, u.ID, "Quick")

	curry := createTestRecipe(t, s, u.ID, "Curry", []*domain.Tag{vegan}, nil)
	toast := createTestRecipe(t, s, u.ID, "Toast", []*domain.Tag{quick}, nil)
	createTestRecipe(t, s, u.ID, "Steak", nil, nil)

	recipes, err := s.ListRecipes(ctx, u.ID, store.RecipeFilter{TagIDs: []int64{vegan.ID, quick.ID}})
	if err != nil {
		t.Fatalf("list filtered recipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].ID != toast.ID || recipes[1].ID != curry.ID {
		t.Errorf("unexpected result order: %d, %d", recipes[0].ID, recipes[1].ID)
	}
}

func TestListRecipesFilterByTagsAndIngredients(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "both@example.com")

	vegan := createTestTag(t, s, u.ID, "Vegan")
	tofu := createTestIngredient(t, s, u.ID, "Tofu")

	match := createTestRecipe(t, s, u.ID, "Tofu Curry", []*domain.Tag{vegan}, []*domain.Ingredient{tofu})
	createTestRecipe(t, s, u.ID, "Plain Curry", []*domain.Tag{vegan}, nil)
	createTestRecipe(t, s, u.ID, "Tofu Scramble", nil, []*domain.Ingredient{tofu})

	recipes, err := s.ListRecipes(ctx, u.ID, store.RecipeFilter{
		TagIDs:        []int64{vegan.ID},
		IngredientIDs: []int64{tofu.ID},
	})
	if err != nil {
		t.Fatalf("list filtered recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
	if recipes[0].ID != match.ID {
		t.Errorf("expected recipe %d, got %d", match.ID, recipes[0].ID)
	}
}

func TestListRecipesFilterDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "distinct@example.com")

	vegan := createTestTag(t, s, u.ID, "Vegan")
	quick := createTestTag(t, s, u.ID, "Quick")

	createTestRecipe(t, s, u.ID, "Curry", []*domain.Tag{vegan, quick}, nil)

	recipes, err := s.ListRecipes(ctx, u.ID, store.RecipeFilter{TagIDs: []int64{vegan.ID, quick.ID}})
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected recipe to appear once, got %d results", len(recipes))
	}
}

func TestListRecipesEmpty(t *testing.T) {
	s := newTestStore(t)
	u := createTestUser(t, s, "empty@example.com")

	recipes, err := s.ListRecipes(context.Background(), u.ID, store.RecipeFilter{})
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if recipes == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(recipes) != 0 {
		t.Errorf("expected no recipes, got %d", len(recipes))
	}
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "update@example.com")

	old := createTestTag(t, s, u.ID, "Breakfast")
	replacement := createTestTag(t, s, u.ID, "Lunch")

	r := createTestRecipe(t, s, u.ID, "Pancakes", []*domain.Tag{old}, nil)

	r.Title = "Crepes"
	r.Tags = []*domain.Tag{replacement}
	r.Touch()

	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("update recipe: %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID, u.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got.Title != "Crepes" {
		t.Errorf("expected Crepes, got %s", got.Title)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "Lunch" {
		t.Errorf("unexpected tags: %+v", got.Tags)
	}
}

func TestUpdateRecipeClearAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "clear@example.com")

	tag := createTestTag(t, s, u.ID, "Dessert")
	r := createTestRecipe(t, s, u.ID, "Cake", []*domain.Tag{tag}, nil)

	r.Tags = nil
	r.Touch()

	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("update recipe: %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID, u.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("expected no tags, got %d", len(got.Tags))
	}
	// The tag row itself survives.
	if _, err := s.GetTag(ctx, tag.ID, u.ID); err != nil {
		t.Errorf("expected tag to still exist: %v", err)
	}
}

func TestUpdateRecipeWrongOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")

	r := createTestRecipe(t, s, u.ID, "Stew", nil, nil)
	r.UserID = other.ID
	r.Title = "Hijacked"

	if err := s.UpdateRecipe(ctx, r); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecipe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "delete@example.com")

	tag := createTestTag(t, s, u.ID, "Dessert")
	r := createTestRecipe(t, s, u.ID, "Cake", []*domain.Tag{tag}, nil)

	if err := s.DeleteRecipe(ctx, r.ID, u.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	if _, err := s.GetRecipe(ctx, r.ID, u.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// The tag row survives the recipe.
	if _, err := s.GetTag(ctx, tag.ID, u.ID); err != nil {
		t.Errorf("expected tag to still exist: %v", err)
	}
}

func TestDeleteRecipeWrongOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")

	r := createTestRecipe(t, s, u.ID, "Stew", nil, nil)

	if err := s.DeleteRecipe(ctx, r.ID, other.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetRecipe(ctx, r.ID, u.ID); err != nil {
		t.Errorf("expected recipe to survive: %v", err)
	}
}

func TestRecipeImageFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "image@example.com")

	r := createTestRecipe(t, s, u.ID, "Pie", nil, nil)

	r.ImageID = "img-abc123"
	r.BlurHash = "LEHV6nWB2yk8pyo0adR*.7kCMdnj"
	r.Touch()

	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("update recipe: %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID, u.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got.ImageID != "img-abc123" {
		t.Errorf("expected image ID, got %q", got.ImageID)
	}
	if got.BlurHash == "" {
		t.Error("expected blur hash to round-trip")
	}
	if !got.HasImage() {
		t.Error("expected HasImage to be true")
	}
}
