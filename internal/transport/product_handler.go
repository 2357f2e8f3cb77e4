package transport

import (
	"net/http"

	"coastal-mart/internal/middleware"
	"coastal-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest carries the mutable product fields for create and update
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=80"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Description string          `json:"description" validate:"required,max=300"`
	Stock       int             `json:"stock" validate:"min=0,max=10000"`
	Image       string          `json:"image"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes. Browsing is public; mutations
// require an authenticated seller.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/categories", h.Categories)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns products filtered by the category and search query params
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	products, err := h.catalogService.List(r.Context(), category, search)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product with its seller's public info
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Categories returns the fixed storefront category list
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.Categories())
}

// Create adds a product to the acting seller's catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	product, err := h.catalogService.Create(r.Context(), actor, service.ProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		h.logger.Debug("Product create failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", actor.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update overwrites the mutable fields of a product owned by the actor
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	product, err := h.catalogService.Update(r.Context(), actor, id, service.ProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		h.logger.Debug("Product update failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product owned by the actor
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.Delete(r.Context(), actor, id); err != nil {
		h.logger.Debug("Product delete failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
