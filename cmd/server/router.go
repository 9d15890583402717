package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lmdah61/Japanese-Text-Server/internal/api"
	apiMiddleware "github.com/lmdah61/Japanese-Text-Server/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Rate limiting applies to /generate only, so a throttled
// client can still observe /health.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Standard middleware. RealIP must precede the rate limiter so client
	// keys reflect the originating address behind a proxy.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Browser clients call the API cross-origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	generateHandler := api.NewGenerateHandler(app.generator, app.logger)
	rateLimiter := apiMiddleware.NewRateLimitMiddleware(
		app.rateLimitStore,
		app.rateLimitWindows(),
		app.logger,
	)

	r.Get("/health", api.Health)

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Limit)
		r.Post("/generate", generateHandler.Generate)
	})

	return r
}
