package trade

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches register and transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.RecordSale)
	r.Post("/purchases", h.recordMovement(KindPurchase))
	r.Post("/deliveries", h.recordMovement(KindDelivery))
	r.Post("/rejections", h.recordMovement(KindRejection))
	r.Post("/register/{shop}/open", h.OpenRegister)
	r.Post("/register/{shop}/close", h.CloseRegister)
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var sale Sale
	if err := httpx.DecodeJSON(r, &sale); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(sale); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	recorded, err := h.service.RecordSale(r.Context(), sale)
	if err != nil {
		h.logger.Error("record sale", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	httpx.JSON(w, http.StatusCreated, recorded)
}

func (h *Handler) recordMovement(kind MovementKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var movement Movement
		if err := httpx.DecodeJSON(r, &movement); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		if err := h.validate.Struct(movement); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		recorded, err := h.service.RecordMovement(r.Context(), kind, movement)
		if err != nil {
			h.logger.Error("record movement", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		httpx.JSON(w, http.StatusCreated, recorded)
	}
}

func (h *Handler) OpenRegister(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.OpenRegister(r.Context(), chi.URLParam(r, "shop"))
	if err != nil {
		h.logger.Error("open register", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrPersistence, err))
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}

func (h *Handler) CloseRegister(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseRegister(r.Context(), chi.URLParam(r, "shop")); err != nil {
		if errors.Is(err, ErrNoSession) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("close register", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrPersistence, err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
