package products

import (
	"github.com/go-chi/chi/v5"

	"github.com/catalogd/catalogd/internal/rbac"
)

// MountRoutes registers product routes. Batch and supplier-association
// routes for the /products subtree are mounted by their own handlers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpProductsRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpProductsWrite))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}
