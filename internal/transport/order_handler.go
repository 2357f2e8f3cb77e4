package transport

import (
	"net/http"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/middleware"
	"coastal-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest places orders from the buyer's cart
type CheckoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required"`
	PaymentMode     string `json:"paymentMode" validate:"omitempty,oneof=ONLINE COD"`
}

// SubmitPaymentRequest records payment evidence on an order
type SubmitPaymentRequest struct {
	OrderID      uuid.UUID `json:"orderId" validate:"required"`
	PaymentMode  string    `json:"paymentMode" validate:"omitempty,oneof=ONLINE COD"`
	PaymentProof string    `json:"paymentProof"`
}

// TrackingRequest records shipping metadata on an approved order
type TrackingRequest struct {
	CourierAgency string `json:"courierAgency" validate:"required"`
	PartnerNumber string `json:"partnerNumber" validate:"required"`
	TrackingID    string `json:"trackingId"`
}

// OrderHandler handles HTTP requests for the order lifecycle
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers order routes, all behind authentication
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
		r.Post("/payment", h.SubmitPayment)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/approve", h.Approve)
		r.Put("/{id}/tracking", h.AddTracking)
	})
}

// Checkout converts the cart into one order per seller
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	orders, err := h.orderService.Checkout(r.Context(), actor, req.DeliveryAddress, domain.PaymentMode(req.PaymentMode))
	if err != nil {
		h.logger.Debug("Checkout failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Checkout completed",
		zap.String("buyer_id", actor.ID.String()),
		zap.Int("orders", len(orders)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, orders)
}

// SubmitPayment records the buyer's payment evidence
func (h *OrderHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var req SubmitPaymentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	order, err := h.orderService.SubmitPayment(r.Context(), actor, req.OrderID, domain.PaymentMode(req.PaymentMode), req.PaymentProof)
	if err != nil {
		h.logger.Debug("Payment submission failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// List returns the orders visible to the actor
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.List(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns one order if the actor may see it
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.Get(r.Context(), actor, orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Approve moves a pending order to approved
func (h *OrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.Approve(r.Context(), actor, orderID)
	if err != nil {
		h.logger.Debug("Order approval failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Order approved",
		zap.String("order_id", orderID.String()),
		zap.String("seller_id", actor.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// AddTracking records shipping metadata and marks the order shipped
func (h *OrderHandler) AddTracking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req TrackingRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	order, err := h.orderService.AddTracking(r.Context(), actor, orderID, req.CourierAgency, req.PartnerNumber, req.TrackingID)
	if err != nil {
		h.logger.Debug("Tracking update failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Order shipped",
		zap.String("order_id", orderID.String()),
		zap.String("courier", req.CourierAgency),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
