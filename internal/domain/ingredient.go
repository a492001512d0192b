package domain

import "time"

// Ingredient is a named component of a recipe, owned by exactly one user.
// Like tags, ingredient names are only meaningful within their owner's
// account.
type Ingredient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (i *Ingredient) Touch() {
	i.UpdatedAt = time.Now()
}
