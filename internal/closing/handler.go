package closing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches closing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{shop}", h.Run)
	r.Get("/{shop}/preview", h.Preview)
}

// Run handles POST /{shop}?date=2026/08/30 — builds the report, ships it and
// triggers the back-office closing. An omitted date closes the current day.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	shopCode, date, err := h.params(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	report, err := h.service.Run(r.Context(), shopCode, date)
	if err != nil {
		h.respondErr(w, shopCode, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Preview handles GET /{shop}/preview?date=... — aggregates without delivery.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	shopCode, date, err := h.params(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	report, err := h.service.Build(r.Context(), shopCode, date)
	if err != nil {
		h.respondErr(w, shopCode, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) params(r *http.Request) (string, time.Time, error) {
	shopCode := chi.URLParam(r, "shop")
	if shopCode == "" {
		return "", time.Time{}, fmt.Errorf("%w: shop is required", httpx.ErrValidation)
	}
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return shopCode, time.Now(), nil
	}
	date, err := time.Parse("2006/01/02", raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: date must be yyyy/mm/dd", httpx.ErrValidation)
	}
	return shopCode, date, nil
}

func (h *Handler) respondErr(w http.ResponseWriter, shopCode string, err error) {
	switch {
	case errors.Is(err, ErrNoSession):
		httpx.RespondError(w, fmt.Errorf("%w: no register session for shop %s", httpx.ErrNotFound, shopCode))
	default:
		h.logger.Error("daily closing", slog.String("shop", shopCode), slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrExternalSystem, err))
	}
}
