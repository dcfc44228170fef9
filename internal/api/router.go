// Package api wires the HTTP surface: routing, middleware, handlers, and
// the response envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/meetscribe/meetscribe/internal/api/middleware"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	ExtractHandler http.HandlerFunc

	GetDraftHandler        http.HandlerFunc
	UpdateDraftItemHandler http.HandlerFunc
	DeleteDraftItemHandler http.HandlerFunc
	ConfirmDraftHandler    http.HandlerFunc

	ListAnalysesHandler http.HandlerFunc
	GetAnalysisHandler  http.HandlerFunc
	ExportHandler       http.HandlerFunc

	UpdateItemHandler http.HandlerFunc
	DeleteItemHandler http.HandlerFunc

	ShareHandler http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.CORS)

	// Public routes: health check and share links
	r.Get("/api/v1/health", deps.HealthHandler)
	r.Get("/share/{analysisID}", deps.ShareHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/extract", deps.ExtractHandler)

		r.Get("/api/v1/drafts/{draftID}", deps.GetDraftHandler)
		r.Put("/api/v1/drafts/{draftID}/items/{itemID}", deps.UpdateDraftItemHandler)
		r.Delete("/api/v1/drafts/{draftID}/items/{itemID}", deps.DeleteDraftItemHandler)
		r.Post("/api/v1/drafts/{draftID}/confirm", deps.ConfirmDraftHandler)

		r.Get("/api/v1/analyses", deps.ListAnalysesHandler)
		r.Get("/api/v1/analyses/{analysisID}", deps.GetAnalysisHandler)
		r.Get("/api/v1/analyses/{analysisID}/export", deps.ExportHandler)
		r.Patch("/api/v1/analyses/{analysisID}/items/{itemID}", deps.UpdateItemHandler)
		r.Delete("/api/v1/analyses/{analysisID}/items/{itemID}", deps.DeleteItemHandler)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", deps.CreateKeyHandler)
			r.Get("/api/v1/admin/keys", deps.ListKeysHandler)
			r.Delete("/api/v1/admin/keys/{keyID}", deps.RevokeKeyHandler)
		})
	})

	return r
}
