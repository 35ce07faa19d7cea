package shops

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	syncer  *Syncer
}

func NewHandler(logger *slog.Logger, service *Service, syncer *Syncer) *Handler {
	return &Handler{logger: logger, service: service, syncer: syncer}
}

// MountRoutes attaches shop master routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{code}", h.Show)
	r.Post("/sync", h.Sync)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	filters := ListFilters{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}
	if r.URL.Query().Get("hidden") != "" {
		hidden := r.URL.Query().Get("hidden") == "true"
		filters.Hidden = &hidden
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list shops", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: list shops", httpx.ErrPersistence))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shops": items, "total": total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	shop, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get shop", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrPersistence, err))
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

// Sync runs the roster sync immediately for the requested date, defaulting to
// today. The scheduled nightly run uses the same job body.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006/01/02", raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: date must be yyyy/mm/dd", httpx.ErrValidation))
			return
		}
		date = parsed
	}
	result, err := h.syncer.Sync(r.Context(), date)
	if err != nil {
		h.logger.Error("shop sync", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrExternalSystem, err))
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
