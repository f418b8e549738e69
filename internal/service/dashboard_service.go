package service

import (
	"context"
	"encoding/json"
	"time"

	"techhub/internal/domain"
	"techhub/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 30 * time.Second

	lowStockThreshold = 10
	recentOrderLimit  = 5
)

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	TotalUsers       int                     `json:"total_users"`
	TotalProducts    int                     `json:"total_products"`
	TotalOrders      int                     `json:"total_orders"`
	PendingOrders    int                     `json:"pending_orders"`
	TotalRevenue     float64                 `json:"total_revenue"`
	RecentOrders     []*domain.OrderWithUser `json:"recent_orders"`
	LowStockProducts []*domain.Product       `json:"low_stock_products"`
}

// DashboardService aggregates store-wide statistics for admins.
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Users(ctx context.Context) ([]*domain.User, error)
}

type dashboardService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	cache       *redis.Client
	logger      *zap.Logger
}

// NewDashboardService creates a new instance of DashboardService. cache may
// be nil, in which case every Stats call hits the database.
func NewDashboardService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	cache *redis.Client,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Stats computes the dashboard aggregate with a short Redis read-through
// cache. Cache failures fall back to the database; the dashboard is always
// served.
func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if stats := s.cached(ctx); stats != nil {
		return stats, nil
	}

	stats := &DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orderRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.orderRepo.CountByStatus(ctx, domain.OrderStatusPending); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = s.orderRepo.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = s.orderRepo.FindRecentWithUsers(ctx, recentOrderLimit); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = s.productRepo.FindLowStock(ctx, lowStockThreshold); err != nil {
		return nil, err
	}

	s.store(ctx, stats)
	return stats, nil
}

// Users lists all accounts for the admin user table.
func (s *dashboardService) Users(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *dashboardService) cached(ctx context.Context) *DashboardStats {
	if s.cache == nil {
		return nil
	}

	val, err := s.cache.Get(ctx, dashboardCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Dashboard cache read failed", zap.Error(err))
		}
		return nil
	}

	stats := &DashboardStats{}
	if err := json.Unmarshal([]byte(val), stats); err != nil {
		s.logger.Warn("Dashboard cache entry unreadable", zap.Error(err))
		return nil
	}
	return stats
}

func (s *dashboardService) store(ctx context.Context, stats *DashboardStats) {
	if s.cache == nil {
		return
	}

	b, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, b, dashboardCacheTTL).Err(); err != nil {
		s.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}
}
