package domain

import "time"

// Recipe is the central catalog entity. Tags and Ingredients hang off it
// via many-to-many memberships; both sides of every membership belong to
// the same owner.
type Recipe struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	TimeMinutes int       `json:"time_minutes"`
	Price       Price     `json:"price"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	ImageID     string    `json:"image_id,omitempty"`
	BlurHash    string    `json:"blur_hash,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Loaded memberships. Nil when the recipe was fetched without relations.
	Tags        []*Tag        `json:"tags,omitempty"`
	Ingredients []*Ingredient `json:"ingredients,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (r *Recipe) Touch() {
	r.UpdatedAt = time.Now()
}

// HasImage reports whether an image has been uploaded for this recipe.
func (r *Recipe) HasImage() bool {
	return r.ImageID != ""
}
