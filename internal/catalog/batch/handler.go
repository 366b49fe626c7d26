package batch

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catalogd/catalogd/internal/catalog/products"
	"github.com/catalogd/catalogd/internal/catalog/suppliers"
	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// Handler serves the batch endpoints under /products and /suppliers.
type Handler struct {
	products  *Coordinator
	suppliers *SupplierCoordinator
	rbac      rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(productsCoord *Coordinator, suppliersCoord *SupplierCoordinator, rbacmw rbac.Middleware) *Handler {
	return &Handler{products: productsCoord, suppliers: suppliersCoord, rbac: rbacmw}
}

// MountRoutes registers the batch subtree under /products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/batch", func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpProductsWrite))
		r.Post("/", h.createProducts)
		r.Put("/", h.updateProducts)
		r.Delete("/", h.deleteProducts)
	})
}

// MountSupplierRoutes registers the batch subtree under /suppliers.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Route("/batch", func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpSuppliersWrite))
		r.Post("/", h.createSuppliers)
		r.Put("/", h.updateSuppliers)
		r.Delete("/", h.deleteSuppliers)
	})
}

func (h *Handler) createProducts(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Items []products.CreateInput `json:"items"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	report, err := h.products.CreateAll(r.Context(), payload.Items)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, statusFor(report), report)
}

func (h *Handler) updateProducts(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Items []UpdateItem `json:"items"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	report, err := h.products.UpdateAll(r.Context(), payload.Items)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, statusFor(report), report)
}

func (h *Handler) deleteProducts(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	report, err := h.products.DeleteAll(r.Context(), payload.IDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, statusFor(report), report)
}

func (h *Handler) createSuppliers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Items []suppliers.CreateInput `json:"items"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	report, err := h.suppliers.CreateAll(r.Context(), payload.Items)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, statusFor(report), report)
}

func (h *Handler) updateSuppliers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs    []int64               `json:"ids"`
		Update suppliers.UpdateInput `json:"update"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	report, err := h.suppliers.UpdateAll(r.Context(), payload.IDs, payload.Update)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, statusFor(report), report)
}

func (h *Handler) deleteSuppliers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	report, err := h.suppliers.DeleteAll(r.Context(), payload.IDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, statusFor(report), report)
}

// statusFor keeps the batch surface a 200 unless every item failed.
func statusFor[T any](report *Report[T]) int {
	if report.Succeeded == 0 && report.Failed > 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}
