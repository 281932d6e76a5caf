package purchase

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/platform/httpx"
	"github.com/craftline-erp/craftline/internal/production"
)

// Handler manages purchase HTTP endpoints.
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
	r.Post("/orders/{id}/accept", h.accept)
	r.Post("/orders/{id}/reject", h.reject)
	r.Post("/orders/{id}/check-stock", h.checkStock)
	r.Put("/orders/{id}", h.edit)
	r.Post("/orders/{id}/request-finance-approval", h.requestFinance)
	r.Post("/orders/{id}/finance-decision", h.financeDecide)
	r.Post("/orders/{id}/verify", h.verify)
}

type actorRequest struct {
	Actor string `json:"actor" validate:"required"`
}

type editRequest struct {
	Quantity  int               `json:"quantity" validate:"gt=0"`
	Materials []materialRequest `json:"materials" validate:"required,min=1,dive"`
	Actor     string            `json:"actor" validate:"required"`
}

type materialRequest struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

type financeDecisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
	Actor   string `json:"actor" validate:"required"`
}

type orderResponse struct {
	Order
	Cost decimal.Decimal `json:"cost"`
}

func respondOrder(w http.ResponseWriter, status int, order Order) {
	httpx.JSON(w, status, orderResponse{Order: order, Cost: order.Cost()})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse{Order: o, Cost: o.Cost()})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": out})
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
	respondOrder(w, http.StatusOK, order)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	h.actorAction(w, r, h.service.Accept)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.actorAction(w, r, h.service.Reject)
}

func (h *Handler) checkStock(w http.ResponseWriter, r *http.Request) {
	h.actorAction(w, r, h.service.CheckStock)
}

func (h *Handler) requestFinance(w http.ResponseWriter, r *http.Request) {
	h.actorAction(w, r, h.service.RequestFinanceApproval)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req editRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	materials := make([]production.Material, 0, len(req.Materials))
	for _, m := range req.Materials {
		materials = append(materials, production.Material{Name: m.Name, Quantity: m.Quantity, UnitCost: m.UnitCost})
	}
	order, err := h.service.Edit(r.Context(), id, EditInput{Quantity: req.Quantity, Materials: materials}, req.Actor)
	if err != nil {
		h.logger.Error("edit purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondOrder(w, http.StatusOK, order)
}

func (h *Handler) financeDecide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req financeDecisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.service.FinanceDecide(r.Context(), id, req.Approve, req.Note, req.Actor)
	if err != nil {
		h.logger.Error("finance decision", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondOrder(w, http.StatusOK, order)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	h.actorAction(w, r, h.service.VerifyPurchase)
}

func (h *Handler) actorAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID, actor string) (Order, error)) {
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
	order, err := fn(r.Context(), id, req.Actor)
	if err != nil {
		h.logger.Error("purchase action", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	respondOrder(w, http.StatusOK, order)
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}
