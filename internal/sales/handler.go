package sales

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/payments"
	"github.com/craftline-erp/craftline/internal/platform/httpx"
)

// Handler manages sales HTTP endpoints.
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
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Put("/orders/{id}", h.edit)
	r.Post("/orders/{id}/payments", h.recordPayment)
	r.Get("/orders/{id}/payments", h.listPayments)
	r.Post("/orders/{id}/finance-decision", h.financeDecide)
	r.Post("/orders/{id}/coupon", h.applyCoupon)
	r.Post("/orders/{id}/coupon-decision", h.decideCoupon)
	r.Post("/orders/{id}/driver-details", h.driverDetails)
	r.Post("/orders/{id}/verify-tax-id", h.verifyTaxID)
	r.Post("/orders/{id}/dispatch", h.dispatchHandoff)
}

type createRequest struct {
	CustomerName      string          `json:"customerName" validate:"required"`
	CustomerContact   string          `json:"customerContact" validate:"required"`
	CustomerEmail     string          `json:"customerEmail" validate:"omitempty,email"`
	CustomerAddress   string          `json:"customerAddress"`
	GSTNumber         string          `json:"gstNumber"`
	ShowroomProductID uuid.UUID       `json:"showroomProductId" validate:"required"`
	Quantity          int             `json:"quantity" validate:"gt=0"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TransportCost     decimal.Decimal `json:"transportCost"`
	DeliveryType      string          `json:"deliveryType" validate:"required"`
	CreatedBy         string          `json:"createdBy" validate:"required"`
}

type editRequest struct {
	CustomerName    string          `json:"customerName" validate:"required"`
	CustomerContact string          `json:"customerContact" validate:"required"`
	CustomerEmail   string          `json:"customerEmail" validate:"omitempty,email"`
	CustomerAddress string          `json:"customerAddress"`
	Quantity        int             `json:"quantity" validate:"gt=0"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TransportCost   decimal.Decimal `json:"transportCost"`
	DeliveryType    string          `json:"deliveryType" validate:"required"`
	Actor           string          `json:"actor" validate:"required"`
}

type paymentRequest struct {
	ReceivedAmount decimal.Decimal `json:"receivedAmount"`
	Method         string          `json:"method" validate:"required,oneof=cash online split"`
	Denominations  map[int]int     `json:"denominations"`
	SplitCash      decimal.Decimal `json:"splitCash"`
	SplitOnline    decimal.Decimal `json:"splitOnline"`
	UTRReference   string          `json:"utrReference"`
	HandledBy      string          `json:"handledBy" validate:"required"`
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
	Actor   string `json:"actor" validate:"required"`
}

type couponRequest struct {
	Code   string `json:"code" validate:"required"`
	Reason string `json:"reason" validate:"required"`
	Actor  string `json:"actor" validate:"required"`
}

type driverRequest struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	VehicleNumber string `json:"vehicleNumber" validate:"required"`
	Actor         string `json:"actor" validate:"required"`
}

type actorRequest struct {
	Actor string `json:"actor" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.Create(r.Context(), CreateInput{
		CustomerName:      req.CustomerName,
		CustomerContact:   req.CustomerContact,
		CustomerEmail:     req.CustomerEmail,
		CustomerAddress:   req.CustomerAddress,
		GSTNumber:         req.GSTNumber,
		ShowroomProductID: req.ShowroomProductID,
		Quantity:          req.Quantity,
		DiscountAmount:    req.DiscountAmount,
		TransportCost:     req.TransportCost,
		DeliveryType:      DeliveryType(req.DeliveryType),
		CreatedBy:         req.CreatedBy,
	})
	if err != nil {
		h.logger.Error("create sales order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		orders []Order
		err    error
	)
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		orders, err = h.service.Search(r.Context(), term)
	} else {
		orders, err = h.service.List(r.Context())
	}
	if err != nil {
		h.logger.Error("list sales orders", slog.Any("error", err))
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

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req editRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.Edit(r.Context(), id, EditInput{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Quantity:        req.Quantity,
		DiscountAmount:  req.DiscountAmount,
		TransportCost:   req.TransportCost,
		DeliveryType:    DeliveryType(req.DeliveryType),
	}, req.Actor)
	if err != nil {
		h.logger.Error("edit sales order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.RecordPayment(r.Context(), id, payments.Attempt{
		ReceivedAmount: req.ReceivedAmount,
		Method:         payments.Method(req.Method),
		Denominations:  req.Denominations,
		SplitCash:      req.SplitCash,
		SplitOnline:    req.SplitOnline,
		UTRReference:   req.UTRReference,
		HandledBy:      req.HandledBy,
	})
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": list})
}

func (h *Handler) financeDecide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req decisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.FinanceDecide(r.Context(), id, req.Approve, req.Note, req.Actor)
	if err != nil {
		h.logger.Error("finance decision", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req couponRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.ApplyCoupon(r.Context(), id, req.Code, req.Reason, req.Actor)
	if err != nil {
		h.logger.Error("apply coupon", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) decideCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req decisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.DecideCoupon(r.Context(), id, req.Approve, req.Note, req.Actor)
	if err != nil {
		h.logger.Error("coupon decision", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) driverDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req driverRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.SetDriverDetails(r.Context(), id, req.Name, req.Phone, req.VehicleNumber, req.Actor)
	if err != nil {
		h.logger.Error("driver details", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) verifyTaxID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.service.VerifyTaxID(r.Context(), id)
	if err != nil {
		h.logger.Error("verify tax id", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) dispatchHandoff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.service.DispatchHandoff(r.Context(), id, req.Actor)
	if err != nil {
		h.logger.Error("dispatch handoff", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
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

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}
