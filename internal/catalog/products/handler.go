package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// Handler serves the product CRUD endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacmw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacmw}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseListFilters(w, r)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Product{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
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
		h.logger.Error("update product", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return 0, false
	}
	return id, true
}

func parseListFilters(w http.ResponseWriter, r *http.Request) (ListFilters, bool) {
	q := r.URL.Query()
	filters := ListFilters{
		Category: q.Get("category"),
		SortBy:   q.Get("sort"),
		SortDir:  q.Get("dir"),
	}
	for _, spec := range []struct {
		key  string
		dest **float64
	}{
		{"price_min", &filters.PriceMin},
		{"price_max", &filters.PriceMax},
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
	for _, spec := range []struct {
		key  string
		dest **int
	}{
		{"stock_min", &filters.StockMin},
		{"stock_max", &filters.StockMax},
	} {
		if raw := q.Get(spec.key); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", spec.key+" must be an integer")
				return ListFilters{}, false
			}
			*spec.dest = &v
		}
	}
	return filters, true
}
