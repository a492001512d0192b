// Package api provides the HTTP API server and handlers for the RecipeBox application.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/ratelimit"
	"github.com/recipebox/recipebox-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	services     *Services
	imageStorage *images.Storage
	router       *chi.Mux
	api          huma.API
	authLimiter  *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store store.Store, services *Services, imageStorage *images.Storage, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Brute-force protection on the credential endpoints, keyed by client IP.
	authLimiter := ratelimit.New(5, 20)
	router.Use(limitCredentialRequests(authLimiter))

	humaConfig := huma.DefaultConfig("RecipeBox API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	RegisterErrorHandler()
	api := humachi.New(router, humaConfig)

	s := &Server{
		store:        store,
		services:     services,
		imageStorage: imageStorage,
		router:       router,
		api:          api,
		authLimiter:  authLimiter,
		logger:       logger,
	}

	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerTagRoutes()
	s.registerIngredientRoutes()
	s.registerRecipeRoutes()

	// Raw image serving stays on chi; huma adds nothing for byte streams.
	router.Get("/recipe-images/{id}", s.handleServeImage)

	return s
}

// limitCredentialRequests applies per-IP rate limiting to the endpoints
// that accept credentials.
func limitCredentialRequests(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost &&
				(r.URL.Path == "/api/v1/users" || r.URL.Path == "/api/v1/users/token") {
				if !limiter.Allow(r.RemoteAddr) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)
					_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"too many requests"}`))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleServeImage streams stored recipe image bytes.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "image id required", http.StatusBadRequest)
		return
	}

	data, err := s.imageStorage.Get(id)
	if err != nil {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}
