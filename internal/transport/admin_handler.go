package transport

import (
	"errors"
	"net/http"

	"techhub/internal/domain"
	"techhub/internal/middleware"
	"techhub/internal/repository"
	"techhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest represents the admin product-creation payload.
type CreateProductRequest struct {
	Name           string            `json:"name" validate:"required"`
	Description    string            `json:"description"`
	Price          float64           `json:"price" validate:"gte=0"`
	ImageURL       string            `json:"image_url"`
	Category       string            `json:"category" validate:"required"`
	Stock          int               `json:"stock" validate:"gte=0"`
	Specifications map[string]string `json:"specifications"`
}

// UpdateProductRequest represents a partial product update; absent fields
// are left untouched.
type UpdateProductRequest struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Price          *float64          `json:"price"`
	ImageURL       *string           `json:"image_url"`
	Category       *string           `json:"category"`
	Stock          *int              `json:"stock"`
	Specifications map[string]string `json:"specifications"`
}

// UpdateOrderStatusRequest represents the admin order-status payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminHandler handles the admin surface: product management, order
// management, user listing and the dashboard.
type AdminHandler struct {
	catalogService   service.CatalogService
	orderService     service.OrderService
	dashboardService service.DashboardService
	logger           *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	catalogService service.CatalogService,
	orderService service.OrderService,
	dashboardService service.DashboardService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalogService:   catalogService,
		orderService:     orderService,
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// RegisterRoutes registers admin routes behind the auth and admin
// middlewares.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/orders", h.ListOrders)
		r.Put("/orders/{id}/status", h.UpdateOrderStatus)

		r.Get("/users", h.ListUsers)
		r.Get("/dashboard", h.Dashboard)
	})
}

// CreateProduct adds a product to the catalog.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product := &domain.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		Category:       req.Category,
		Stock:          req.Stock,
		Specifications: req.Specifications,
	}

	if err := h.catalogService.Create(r.Context(), product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"product_id": product.ID.String()})
}

// UpdateProduct applies a partial update to a product.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := domain.ProductUpdate{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		Category:       req.Category,
		Stock:          req.Stock,
		Specifications: req.Specifications,
	}
	if update.Empty() {
		middleware.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.catalogService.Update(r.Context(), id, update); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// DeleteProduct removes a product. Existing order snapshots keep their
// copied name and price.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListOrders returns every order, newest first, with owner details.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus sets an order's status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order status updated"})
}

// ListUsers returns every account, hashes excluded by the profile shape.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.dashboardService.Users(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, profileOf(user))
	}
	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// Dashboard returns the store-wide aggregate.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
