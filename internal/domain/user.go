package domain

import (
	"strings"
	"time"
)

// User represents an authenticated user account in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}

// NormalizeEmail lower-cases the domain portion of an email address.
// The local part is preserved as typed, since mail systems may treat it
// case-sensitively. "Cook@EXAMPLE.com" becomes "Cook@example.com".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// EmailKey returns the fully lower-cased form of an email address, used
// for uniqueness checks and lookups.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
