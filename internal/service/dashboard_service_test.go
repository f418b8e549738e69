package service

import (
	"context"
	"testing"

	"techhub/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Order repository returning canned aggregates.
type statsOrderRepository struct {
	stubOrderRepository
	total   int
	pending int
	revenue float64
}

func (s *statsOrderRepository) Count(ctx context.Context) (int, error) { return s.total, nil }

func (s *statsOrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	return s.pending, nil
}

func (s *statsOrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	return s.revenue, nil
}

func seededRepos(t *testing.T) (*mockUserRepository, *mockProductRepository, *statsOrderRepository) {
	t.Helper()

	userRepo := newMockUserRepository()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		err := userRepo.Create(context.Background(), &domain.User{
			ID:    uuid.New(),
			Email: email,
			Name:  "Stats User",
		})
		require.NoError(t, err)
	}

	productRepo := newMockProductRepository()
	productRepo.add()
	productRepo.add()

	orderRepo := &statsOrderRepository{total: 7, pending: 2, revenue: 1234.50}
	return userRepo, productRepo, orderRepo
}

func TestStatsAggregatesAcrossRepositories(t *testing.T) {
	userRepo, productRepo, orderRepo := seededRepos(t)
	logger, _ := zap.NewDevelopment()

	service := NewDashboardService(userRepo, productRepo, orderRepo, nil, logger)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 7, stats.TotalOrders)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 1234.50, stats.TotalRevenue)
}

func TestStatsServesFromCacheWithinTTL(t *testing.T) {
	userRepo, productRepo, orderRepo := seededRepos(t)
	logger, _ := zap.NewDevelopment()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	service := NewDashboardService(userRepo, productRepo, orderRepo, cache, logger)
	ctx := context.Background()

	first, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, first.TotalOrders)

	// The database changed but the cache has not expired yet.
	orderRepo.total = 99

	second, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, second.TotalOrders, "within the TTL the cached aggregate is served")

	// Expire the entry; fresh numbers come through.
	mr.FastForward(dashboardCacheTTL * 2)

	third, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 99, third.TotalOrders)
}

func TestStatsFailsOpenWhenCacheIsDown(t *testing.T) {
	userRepo, productRepo, orderRepo := seededRepos(t)
	logger, _ := zap.NewDevelopment()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	// Cache backend gone before the first read
	mr.Close()

	service := NewDashboardService(userRepo, productRepo, orderRepo, cache, logger)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalOrders)
}

func TestUsersReturnsEveryAccount(t *testing.T) {
	userRepo, productRepo, orderRepo := seededRepos(t)
	logger, _ := zap.NewDevelopment()

	service := NewDashboardService(userRepo, productRepo, orderRepo, nil, logger)

	users, err := service.Users(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
