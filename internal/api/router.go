package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/paokel/novelhub/internal/auth"
	"github.com/paokel/novelhub/internal/bookstore"
	"github.com/paokel/novelhub/internal/catalog"
	"github.com/paokel/novelhub/internal/events"
)

// NewRouter creates a chi router with all API routes mounted. Login and
// the public index are open; everything else sits behind the access gate.
// authEnabled false disables the gate for local development.
func NewRouter(books *bookstore.Store, builder *catalog.Builder, gate *auth.Service, authEnabled bool, broker *events.Broker) chi.Router {
	h := NewHandler(books, builder, gate, broker)

	r := chi.NewRouter()

	// Public surface.
	r.Post("/auth/login", h.Login)
	r.Get("/index", h.PublicIndex)

	// Admin surface.
	r.Group(func(pr chi.Router) {
		pr.Use(RequireAuth(authEnabled, gate))

		pr.Get("/books", h.ListBooks)
		pr.Post("/books", h.CreateBook)
		pr.Put("/books/{slug}", h.EditBook)
		pr.Get("/books/{slug}/chapters", h.ListChapters)
		pr.Post("/books/{slug}/chapters", h.UploadChapter)
		pr.Delete("/chapters", h.DeleteChapters)
		pr.Post("/admin/rebuild-manifest", h.RebuildManifest)

		if broker != nil {
			pr.Get("/events", broker.ServeHTTP)
		}
	})

	return r
}
