package history

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// Handler serves the history read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacmw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacmw}
}

// MountRoutes registers history routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpHistoryRead))
		r.Get("/price/{productID}", h.priceHistory)
		r.Get("/stock/{productID}", h.stockHistory)
		r.Get("/combined/{productID}", h.combinedHistory)
	})
}

func (h *Handler) priceHistory(w http.ResponseWriter, r *http.Request) {
	productID, rng, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	changes, err := h.service.PriceHistory(r.Context(), productID, rng)
	if err != nil {
		h.logger.Error("price history", slog.Any("error", err), slog.Int64("product_id", productID))
		httpx.RespondError(w, err)
		return
	}
	if changes == nil {
		changes = []PriceChange{}
	}
	httpx.JSON(w, http.StatusOK, changes)
}

func (h *Handler) stockHistory(w http.ResponseWriter, r *http.Request) {
	productID, rng, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	changes, err := h.service.StockHistory(r.Context(), productID, rng)
	if err != nil {
		h.logger.Error("stock history", slog.Any("error", err), slog.Int64("product_id", productID))
		httpx.RespondError(w, err)
		return
	}
	if changes == nil {
		changes = []StockChange{}
	}
	httpx.JSON(w, http.StatusOK, changes)
}

func (h *Handler) combinedHistory(w http.ResponseWriter, r *http.Request) {
	productID, rng, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Combined(r.Context(), productID, rng)
	if err != nil {
		h.logger.Error("combined history", slog.Any("error", err), slog.Int64("product_id", productID))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (int64, TimeRange, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return 0, TimeRange{}, false
	}
	var rng TimeRange
	if raw := r.URL.Query().Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be RFC3339")
			return 0, TimeRange{}, false
		}
		rng.From = ts
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be RFC3339")
			return 0, TimeRange{}, false
		}
		rng.To = ts
	}
	return productID, rng, true
}
