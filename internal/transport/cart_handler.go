package transport

import (
	"errors"
	"net/http"

	"techhub/internal/middleware"
	"techhub/internal/repository"
	"techhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart payload.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest represents the quantity-update payload. Zero and
// negative quantities remove the item.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles the per-user cart endpoints. All routes require an
// authenticated user.
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers the cart routes behind authMiddleware.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.Add)
		r.Put("/items/{id}", h.Update)
		r.Delete("/items/{id}", h.Remove)
	})
}

// Add puts a product into the cart, merging with an existing line for the
// same product.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.cartService.Add(r.Context(), userID, productID, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to add to cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item added to cart"})
}

// Get returns the cart with product details joined in.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to read cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, entries)
}

// Update sets an item's quantity; zero or less removes it.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cartService.UpdateQuantity(r.Context(), userID, itemID, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
			return
		}
		h.logger.Error("Failed to update cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart updated"})
}

// Remove deletes one item from the cart.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	if err := h.cartService.Remove(r.Context(), userID, itemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
			return
		}
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
