package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/platform/httpx"
)

// Handler manages transport HTTP endpoints.
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
	r.Get("/approvals", h.listApprovals)
	r.Get("/approvals/{id}", h.getApproval)
	r.Post("/approvals/{id}/approve", h.approve)
	r.Post("/approvals/{id}/reject", h.reject)
	r.Post("/approvals/{id}/accept-demand", h.acceptDemand)
	r.Post("/approvals/{id}/renegotiate", h.renegotiate)
	r.Post("/approvals/{id}/modify-order", h.modifyOrder)

	r.Post("/vehicles", h.addVehicle)
	r.Get("/vehicles", h.listVehicles)
	r.Put("/vehicles/{id}", h.editVehicle)
	r.Delete("/vehicles/{id}", h.deleteVehicle)
	r.Post("/vehicles/{id}/assign", h.assignVehicle)
	r.Post("/vehicles/{id}/start-return", h.vehicleAction(h.service.StartReturn))
	r.Post("/vehicles/{id}/mark-returned", h.vehicleAction(h.service.MarkReturned))
	r.Post("/vehicles/{id}/enter-workshop", h.vehicleAction(h.service.EnterWorkshop))
	r.Post("/vehicles/{id}/leave-workshop", h.vehicleAction(h.service.LeaveWorkshop))
}

type actorRequest struct {
	Actor string `json:"actor" validate:"required"`
}

type rejectRequest struct {
	DemandAmount decimal.Decimal `json:"demandAmount"`
	Notes        string          `json:"notes" validate:"required"`
	Actor        string          `json:"actor" validate:"required"`
}

type renegotiateRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	CustomerNotes string          `json:"customerNotes" validate:"required"`
	Actor         string          `json:"actor" validate:"required"`
}

type addVehicleRequest struct {
	RegistrationNumber string `json:"registrationNumber" validate:"required"`
	Model              string `json:"model"`
	CapacityKg         int    `json:"capacityKg" validate:"gt=0"`
	DriverName         string `json:"driverName"`
	Actor              string `json:"actor" validate:"required"`
}

type editVehicleRequest struct {
	Model      string `json:"model"`
	CapacityKg int    `json:"capacityKg" validate:"gt=0"`
	DriverName string `json:"driverName"`
	Actor      string `json:"actor" validate:"required"`
}

type assignVehicleRequest struct {
	OrderNumber string `json:"orderNumber" validate:"required"`
	Actor       string `json:"actor" validate:"required"`
}

func (h *Handler) listApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list transport approvals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"approvals": approvals})
}

func (h *Handler) getApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.approvalAction(w, r, h.service.Approve)
}

func (h *Handler) acceptDemand(w http.ResponseWriter, r *http.Request) {
	h.approvalAction(w, r, h.service.AcceptDemand)
}

func (h *Handler) modifyOrder(w http.ResponseWriter, r *http.Request) {
	h.approvalAction(w, r, h.service.ModifyOrder)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !h.decode(w, r, &req) {
		return
	}
	a, err := h.service.Reject(r.Context(), id, req.DemandAmount, req.Notes, req.Actor)
	if err != nil {
		h.logger.Error("reject transport approval", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) renegotiate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req renegotiateRequest
	if !h.decode(w, r, &req) {
		return
	}
	a, err := h.service.Renegotiate(r.Context(), id, req.Amount, req.CustomerNotes, req.Actor)
	if err != nil {
		h.logger.Error("renegotiate transport approval", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) addVehicle(w http.ResponseWriter, r *http.Request) {
	var req addVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.service.AddVehicle(r.Context(), AddVehicleInput{
		RegistrationNumber: req.RegistrationNumber,
		Model:              req.Model,
		CapacityKg:         req.CapacityKg,
		DriverName:         req.DriverName,
	}, req.Actor)
	if err != nil {
		h.logger.Error("add vehicle", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) editVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req editVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.service.EditVehicle(r.Context(), id, EditVehicleInput{
		Model:      req.Model,
		CapacityKg: req.CapacityKg,
		DriverName: req.DriverName,
	}, req.Actor)
	if err != nil {
		h.logger.Error("edit vehicle", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.DeleteVehicle(r.Context(), id, req.Actor); err != nil {
		h.logger.Error("delete vehicle", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusNoContent, nil)
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	fleet, err := h.service.ListVehicles(r.Context())
	if err != nil {
		h.logger.Error("list vehicles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicles": fleet})
}

func (h *Handler) assignVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req assignVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.service.AssignVehicle(r.Context(), id, req.OrderNumber, req.Actor)
	if err != nil {
		h.logger.Error("assign vehicle", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) vehicleAction(fn func(ctx context.Context, id uuid.UUID, actor string) (Vehicle, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}
		var req actorRequest
		if !h.decode(w, r, &req) {
			return
		}
		v, err := fn(r.Context(), id, req.Actor)
		if err != nil {
			h.logger.Error("vehicle action", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, v)
	}
}

func (h *Handler) approvalAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID, actor string) (Approval, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !h.decode(w, r, &req) {
		return
	}
	a, err := fn(r.Context(), id, req.Actor)
	if err != nil {
		h.logger.Error("transport action", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
