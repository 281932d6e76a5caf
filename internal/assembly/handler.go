package assembly

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/platform/httpx"
)

// Handler manages assembly HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/start", h.action(func(s *Service) actionFn { return s.Start }))
	r.Post("/orders/{id}/advance", h.advance)
	r.Post("/orders/{id}/pause", h.action(func(s *Service) actionFn { return s.Pause }))
	r.Post("/orders/{id}/resume", h.action(func(s *Service) actionFn { return s.Resume }))
	r.Post("/orders/{id}/complete", h.action(func(s *Service) actionFn { return s.Complete }))
	r.Post("/orders/{id}/rework", h.action(func(s *Service) actionFn { return s.Rework }))
}

type actionFn func(ctx context.Context, id uuid.UUID, actor string) (Order, error)

type actorRequest struct {
	Actor string `json:"actor" validate:"required"`
}

type advanceRequest struct {
	Delta     int    `json:"delta"`
	Remaining bool   `json:"remaining"`
	Actor     string `json:"actor" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list assembly orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req advanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.service.Advance(r.Context(), id, AdvanceInput{Delta: req.Delta, Remaining: req.Remaining}, req.Actor)
	if err != nil {
		h.logger.Error("advance assembly", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) action(pick func(*Service) actionFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.orderID(w, r)
		if !ok {
			return
		}
		var req actorRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		order, err := pick(h.service)(r.Context(), id, req.Actor)
		if err != nil {
			h.logger.Error("assembly action", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, order)
	}
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}
