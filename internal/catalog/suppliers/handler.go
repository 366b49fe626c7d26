package suppliers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// Handler serves the supplier endpoints, including the product association
// subtree.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacmw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacmw}
}

// MountRoutes registers the /suppliers routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpSuppliersRead))
		r.Get("/", h.list)
		r.Get("/top-rated", h.topRated)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpSuppliersWrite))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// MountProductRoutes registers the association subtree under /products.
func (h *Handler) MountProductRoutes(r chi.Router) {
	r.Route("/{id}/suppliers", func(r chi.Router) {
		r.With(h.rbac.Require(rbac.OpSuppliersRead)).Get("/", h.forProduct)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.Require(rbac.OpSuppliersLink))
			r.Post("/{supplierID}", h.associate)
			r.Delete("/{supplierID}", h.disassociate)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseListFilters(w, r)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Supplier{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "id", "invalid supplier ID")
	if !ok {
		return
	}
	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sup)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create supplier", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "id", "invalid supplier ID")
	if !ok {
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Error("update supplier", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "id", "invalid supplier ID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) topRated(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "limit must be an integer")
			return
		}
		limit = v
	}
	items, err := h.service.TopRated(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Supplier{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) forProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parsePathID(w, r, "id", "invalid product ID")
	if !ok {
		return
	}
	items, err := h.service.ForProduct(r.Context(), productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Supplier{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) associate(w http.ResponseWriter, r *http.Request) {
	productID, ok := parsePathID(w, r, "id", "invalid product ID")
	if !ok {
		return
	}
	supplierID, ok := parsePathID(w, r, "supplierID", "invalid supplier ID")
	if !ok {
		return
	}
	if err := h.service.Associate(r.Context(), productID, supplierID); err != nil {
		h.logger.Error("associate supplier", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "supplier_id": supplierID})
}

func (h *Handler) disassociate(w http.ResponseWriter, r *http.Request) {
	productID, ok := parsePathID(w, r, "id", "invalid product ID")
	if !ok {
		return
	}
	supplierID, ok := parsePathID(w, r, "supplierID", "invalid supplier ID")
	if !ok {
		return
	}
	if err := h.service.Disassociate(r.Context(), productID, supplierID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "supplier_id": supplierID, "linked": false})
}

func parsePathID(w http.ResponseWriter, r *http.Request, param, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", message)
		return 0, false
	}
	return id, true
}

func parseListFilters(w http.ResponseWriter, r *http.Request) (ListFilters, bool) {
	q := r.URL.Query()
	filters := ListFilters{
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	for _, spec := range []struct {
		key  string
		dest **float64
	}{
		{"rating_min", &filters.RatingMin},
		{"rating_max", &filters.RatingMax},
	} {
		if raw := q.Get(spec.key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", spec.key+" must be a number")
				return ListFilters{}, false
			}
			*spec.dest = &v
		}
	}
	return filters, true
}
