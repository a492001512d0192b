package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/recipebox/recipebox-server/internal/id"
	"github.com/recipebox/recipebox-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "test@example.com")

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != "test@example.com" {
		t.Errorf("expected email test@example.com, got %s", got.Email)
	}
	if got.Name != "Test User" {
		t.Errorf("expected name Test User, got %s", got.Name)
	}
	if !got.IsActive {
		t.Error("expected user to be active")
	}
	if got.IsStaff || got.IsSuperuser {
		t.Error("expected plain user flags")
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "user-missing")
	if err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "Mixed@Example.com")

	got, err := s.GetUserByEmail(ctx, "mixed@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %s, got %s", u.ID, got.ID)
	}
	// The stored email keeps its original casing.
	if got.Email != "Mixed@Example.com" {
		t.Errorf("expected original casing, got %s", got.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "dup@example.com")

	now := time.Now().UTC()
	u := createTestUser(t, s, "other@example.com")
	u.ID = id.MustGenerate("user")
	u.Email = "DUP@example.com"
	u.CreatedAt = now
	u.UpdatedAt = now

	err := s.CreateUser(ctx, u)
	if err != store.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "update@example.com")

	u.Name = "New Name"
	u.PasswordHash = "newhash"
	u.Touch()

	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("expected New Name, got %s", got.Name)
	}
	if got.PasswordHash != "newhash" {
		t.Errorf("expected updated hash, got %s", got.PasswordHash)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	s := newTestStore(t)

	u := createTestUser(t, s, "present@example.com")
	u.ID = "user-missing"

	err := s.UpdateUser(context.Background(), u)
	if err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserEmailCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "first@example.com")
	second := createTestUser(t, s, "second@example.com")

	second.Email = "First@Example.com"
	second.Touch()

	err := s.UpdateUser(ctx, second)
	if err != store.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}
