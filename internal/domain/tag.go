package domain

import "time"

// Tag labels recipes for filtering, e.g. "vegan" or "dessert".
// Tags belong to exactly one user; two users may each own a tag with the
// same name without conflict.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}
