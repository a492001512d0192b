// Package main provides a tool to create an administrative account with
// staff and superuser privileges. Superusers are never created over HTTP.
//
// Usage:
//
//	DATA_PATH=~/RecipeBox/data SUPERUSER_PASSWORD=secret go run ./cmd/createsuperuser -email admin@example.com -name Admin
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/recipebox/recipebox-server/internal/auth"
	"github.com/recipebox/recipebox-server/internal/logger"
	"github.com/recipebox/recipebox-server/internal/service"
	"github.com/recipebox/recipebox-server/internal/store/sqlite"
)

var (
	email = flag.String("email", "", "Email address for the superuser (required)")
	name  = flag.String("name", "", "Display name for the superuser")
)

func main() {
	flag.Parse()

	if *email == "" {
		log.Fatal("The -email flag is required")
	}

	password := os.Getenv("SUPERUSER_PASSWORD")
	if password == "" {
		log.Fatal("SUPERUSER_PASSWORD must be set")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/RecipeBox/data")
	}

	dbPath := filepath.Join(dataPath, "recipebox.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	lg := logger.New(logger.Config{Level: slog.LevelWarn})

	s, err := sqlite.Open(dbPath, lg.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	// The token service is unused here but the user service requires one.
	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	users := service.NewUserService(s, tokens, lg.Logger)

	user, err := users.RegisterSuperuser(context.Background(), service.RegisterRequest{
		Email:    *email,
		Password: password,
		Name:     *name,
	})
	if err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}

	fmt.Printf("Created superuser %s (%s)\n", user.Email, user.ID)
}
