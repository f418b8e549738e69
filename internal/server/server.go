package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"techhub/internal/config"
	custommiddleware "techhub/internal/middleware"
	"techhub/internal/repository"
	"techhub/internal/service"
	"techhub/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers onto a chi router and
// returns a ready-to-listen HTTP server. redisClient may be nil; rate
// limiting and dashboard caching are then disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	isDevelopment := cfg.Server.Env == "development"

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, isDevelopment))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	checkoutStore := repository.NewCheckoutStore(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(checkoutStore, orderRepo, cfg.Order.MissingProductPolicy)
	dashboardService := service.NewDashboardService(userRepo, productRepo, orderRepo, redisClient, logger)

	// Handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	adminHandler := transport.NewAdminHandler(catalogService, orderService, dashboardService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(authService, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	if redisClient != nil {
		// Brute-force protection on the credential endpoints only; the rest
		// of the API stays unthrottled.
		authRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 20,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:auth",
		}, logger)

		router.Group(func(r chi.Router) {
			r.Use(authRateLimit)
			authHandler.RegisterRoutes(r, authMiddleware)
		})
	} else {
		authHandler.RegisterRoutes(router, authMiddleware)
	}

	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
