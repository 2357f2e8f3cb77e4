package transport

import (
	"net/http"

	"coastal-mart/internal/middleware"
	"coastal-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest adds quantity units of a product to the cart
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CartHandler handles HTTP requests for the buyer's cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers cart routes, all behind authentication
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Items)
		r.Post("/", h.Add)
		r.Delete("/{productId}", h.Remove)
	})
}

// Items returns the cart lines in insertion order
func (h *CartHandler) Items(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	items, err := h.cartService.Items(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Add upserts a cart line and returns the full cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	items, err := h.cartService.Add(r.Context(), actor, req.ProductID, req.Quantity)
	if err != nil {
		h.logger.Debug("Cart add failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Remove deletes a cart line and returns the remaining cart
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	items, err := h.cartService.Remove(r.Context(), actor, productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}
