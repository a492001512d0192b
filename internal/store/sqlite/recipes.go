package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `id, user_id, title, time_minutes, price_cents,
	description, link, image_id, blur_hash, created_at, updated_at`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Recipe. Tags and Ingredients are left nil; callers load them
// separately.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		priceCents int64
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.TimeMinutes,
		&priceCents,
		&r.Description,
		&r.Link,
		&r.ImageID,
		&r.BlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Price = domain.PriceFromCents(priceCents)

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateRecipe inserts a recipe and its tag and ingredient associations in
// a single transaction, and assigns the generated row ID to r.ID.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (
			user_id, title, time_minutes, price_cents, description, link,
			image_id, blur_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID,
		r.Title,
		r.TimeMinutes,
		r.Price.Cents(),
		r.Description,
		r.Link,
		r.ImageID,
		r.BlurHash,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}

	r.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}

	if err := setRecipeAssociations(ctx, tx, r); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRecipe retrieves a recipe owned by the given user, including its tags
// and ingredients. Returns store.ErrNotFound if no such recipe exists for
// that owner.
func (s *Store) GetRecipe(ctx context.Context, id int64, userID string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ? AND user_id = ?`, id, userID)

	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadRecipeAssociations(ctx, []*domain.Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns the user's recipes ordered by ID descending,
// optionally narrowed to recipes assigned any of the filter's tag IDs and
// any of its ingredient IDs. Tags and ingredients are loaded for every
// returned recipe.
func (s *Store) ListRecipes(ctx context.Context, userID string, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = ?`
	args := []any{userID}

	if len(filter.TagIDs) > 0 {
		placeholders, tagArgs := int64Placeholders(filter.TagIDs)
		query += ` AND id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN (` + placeholders + `))`
		args = append(args, tagArgs...)
	}
	if len(filter.IngredientIDs) > 0 {
		placeholders, ingArgs := int64Placeholders(filter.IngredientIDs)
		query += ` AND id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN (` + placeholders + `))`
		args = append(args, ingArgs...)
	}

	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if recipes == nil {
		return []*domain.Recipe{}, nil
	}

	if err := s.loadRecipeAssociations(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// UpdateRecipe performs a full row update on a recipe owned by r.UserID and
// replaces its tag and ingredient associations, all in one transaction.
// Returns store.ErrNotFound if no such recipe exists for that owner.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE recipes SET
			title = ?,
			time_minutes = ?,
			price_cents = ?,
			description = ?,
			link = ?,
			image_id = ?,
			blur_hash = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		r.Title,
		r.TimeMinutes,
		r.Price.Cents(),
		r.Description,
		r.Link,
		r.ImageID,
		r.BlurHash,
		formatTime(r.UpdatedAt),
		r.ID,
		r.UserID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, r.ID); err != nil {
		return fmt.Errorf("delete recipe_tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, r.ID); err != nil {
		return fmt.Errorf("delete recipe_ingredients: %w", err)
	}

	if err := setRecipeAssociations(ctx, tx, r); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRecipe removes a recipe owned by the given user. Associations are
// removed by the ON DELETE CASCADE on the join tables.
// Returns store.ErrNotFound if no such recipe exists for that owner.
func (s *Store) DeleteRecipe(ctx context.Context, id int64, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// setRecipeAssociations inserts join rows for the recipe's current Tags
// and Ingredients inside the caller's transaction.
func setRecipeAssociations(ctx context.Context, tx *sql.Tx, r *domain.Recipe) error {
	now := formatTime(time.Now().UTC())

	for _, t := range r.Tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			r.ID, t.ID, now,
		)
		if err != nil {
			return fmt.Errorf("insert recipe_tag: %w", err)
		}
	}

	for _, ing := range r.Ingredients {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, created_at)
			VALUES (?, ?, ?)`,
			r.ID, ing.ID, now,
		)
		if err != nil {
			return fmt.Errorf("insert recipe_ingredient: %w", err)
		}
	}

	return nil
}

// loadRecipeAssociations populates Tags and Ingredients for the given
// recipes with two batched queries.
func (s *Store) loadRecipeAssociations(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Recipe, len(recipes))
	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		byID[r.ID] = r
		ids[i] = r.ID
		r.Tags = []*domain.Tag{}
		r.Ingredients = []*domain.Ingredient{}
	}

	placeholders, args := int64Placeholders(ids)

	rows, err := s.db.QueryContext(ctx, `
		SELECT rt.recipe_id, t.id, t.user_id, t.name, t.created_at, t.updated_at
		FROM recipe_tags rt
		INNER JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id IN (`+placeholders+`)
		ORDER BY t.id ASC`, args...)
	if err != nil {
		return fmt.Errorf("query recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var t domain.Tag
		var createdAt, updatedAt string
		if err := rows.Scan(&recipeID, &t.ID, &t.UserID, &t.Name, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("scan recipe tag: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		if r, ok := byID[recipeID]; ok {
			r.Tags = append(r.Tags, &t)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	ingRows, err := s.db.QueryContext(ctx, `
		SELECT ri.recipe_id, i.id, i.user_id, i.name, i.created_at, i.updated_at
		FROM recipe_ingredients ri
		INNER JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id IN (`+placeholders+`)
		ORDER BY i.id ASC`, args...)
	if err != nil {
		return fmt.Errorf("query recipe ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var recipeID int64
		var ing domain.Ingredient
		var createdAt, updatedAt string
		if err := ingRows.Scan(&recipeID, &ing.ID, &ing.UserID, &ing.Name, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("scan recipe ingredient: %w", err)
		}
		if ing.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if ing.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		if r, ok := byID[recipeID]; ok {
			r.Ingredients = append(r.Ingredients, &ing)
		}
	}
	return ingRows.Err()
}
