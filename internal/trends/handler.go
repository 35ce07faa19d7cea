package trends

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/stocks"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches trend query routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Query)
}

// Query handles GET /?shop=S001&product=P001&from=2026/03&to=2026/08&cost=120
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := Request{
		ShopCode:    q.Get("shop"),
		ProductCode: q.Get("product"),
	}
	if req.ShopCode == "" || req.ProductCode == "" {
		httpx.RespondError(w, fmt.Errorf("%w: shop and product are required", httpx.ErrValidation))
		return
	}

	var err error
	if req.FromMonth, err = time.Parse(stocks.MonthLayout, q.Get("from")); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: from must be yyyy/mm", httpx.ErrValidation))
		return
	}
	if req.ToMonth, err = time.Parse(stocks.MonthLayout, q.Get("to")); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: to must be yyyy/mm", httpx.ErrValidation))
		return
	}
	if raw := q.Get("cost"); raw != "" {
		if req.FinalCostPrice, err = strconv.ParseFloat(raw, 64); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: cost must be numeric", httpx.ErrValidation))
			return
		}
	}

	result, err := h.service.QueryItemTrends(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRangeTooWide), errors.Is(err, ErrInvalidRange):
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrInvalidRange, err))
		default:
			h.logger.Error("trend query", slog.Any("error", err))
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrPersistence, err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
