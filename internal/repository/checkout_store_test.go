package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"techhub/internal/domain"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Apply the real schema
	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func mustCreateUser(t *testing.T, email string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test User",
		CreatedAt:    time.Now(),
	}
	if err := NewUserRepository(testDB).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func mustCreateProduct(t *testing.T, name string, price float64) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: "integration test product",
		Price:       price,
		Category:    "Test",
		Stock:       50,
		Specifications: map[string]string{
			"origin": "test",
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func TestFirstUserBecomesAdminAtomically(t *testing.T) {
	ctx := context.Background()
	if _, err := testDB.ExecContext(ctx, "TRUNCATE users CASCADE"); err != nil {
		t.Fatalf("failed to truncate users: %v", err)
	}

	first := mustCreateUser(t, "admin-check-first@example.com")
	if first.Role != domain.RoleAdmin {
		t.Errorf("first user should come back as admin, got %q", first.Role)
	}

	second := mustCreateUser(t, "admin-check-second@example.com")
	if second.Role != domain.RoleUser {
		t.Errorf("second user should come back as a regular user, got %q", second.Role)
	}
}

func TestDuplicateEmailSurfacesAsUserAlreadyExists(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	mustCreateUser(t, "duplicate@example.com")

	dup := &domain.User{
		ID:           uuid.New(),
		Email:        "duplicate@example.com",
		PasswordHash: "hash",
		Name:         "Dup",
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, dup); err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestCartUpsertMergesQuantities(t *testing.T) {
	ctx := context.Background()
	cartRepo := NewCartRepository(testDB)

	user := mustCreateUser(t, "cart-upsert@example.com")
	product := mustCreateProduct(t, "Upsert Gadget", 19.99)

	for i := 0; i < 3; i++ {
		item := &domain.CartItem{
			ID:        uuid.New(),
			UserID:    user.ID,
			ProductID: product.ID,
			Quantity:  2,
			AddedAt:   time.Now(),
		}
		if err := cartRepo.Upsert(ctx, item); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	entries, err := cartRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one merged cart line, got %d", len(entries))
	}
	if entries[0].Quantity != 6 {
		t.Errorf("expected merged quantity 6, got %d", entries[0].Quantity)
	}
	if entries[0].Product == nil || entries[0].Product.ID != product.ID {
		t.Error("cart entry should join in the product")
	}
}

func TestCartOmitsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	cartRepo := NewCartRepository(testDB)
	productRepo := NewProductRepository(testDB)

	user := mustCreateUser(t, "cart-deleted@example.com")
	kept := mustCreateProduct(t, "Kept Gadget", 10.00)
	doomed := mustCreateProduct(t, "Doomed Gadget", 20.00)

	for _, p := range []*domain.Product{kept, doomed} {
		item := &domain.CartItem{
			ID:        uuid.New(),
			UserID:    user.ID,
			ProductID: p.ID,
			Quantity:  1,
			AddedAt:   time.Now(),
		}
		if err := cartRepo.Upsert(ctx, item); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	if err := productRepo.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("product delete failed: %v", err)
	}

	entries, err := cartRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the deleted product's line to be hidden, got %d lines", len(entries))
	}
	if entries[0].Product.ID != kept.ID {
		t.Error("wrong line survived")
	}
}

func TestCheckoutTransactionCreatesOrderAndClearsCart(t *testing.T) {
	ctx := context.Background()
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	store := NewCheckoutStore(testDB)

	user := mustCreateUser(t, "checkout@example.com")
	product := mustCreateProduct(t, "Checkout Gadget", 49.99)

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		AddedAt:   time.Now(),
	}
	if err := cartRepo.Upsert(ctx, item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	orderID := uuid.New()
	err := store.WithinTx(ctx, func(tx CheckoutTx) error {
		cartItems, err := tx.LockCart(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(cartItems) != 1 {
			t.Fatalf("expected one locked cart line, got %d", len(cartItems))
		}

		locked, err := tx.FindProduct(ctx, cartItems[0].ProductID)
		if err != nil {
			return err
		}

		order := &domain.Order{
			ID:     orderID,
			UserID: user.ID,
			Items: []domain.OrderItem{{
				ProductID: locked.ID,
				Name:      locked.Name,
				UnitPrice: locked.Price,
				Quantity:  cartItems[0].Quantity,
				LineTotal: locked.Price * float64(cartItems[0].Quantity),
			}},
			TotalAmount: locked.Price * float64(cartItems[0].Quantity),
			Status:      domain.OrderStatusPending,
			CreatedAt:   time.Now(),
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.ClearCart(ctx, user.ID)
	})
	if err != nil {
		t.Fatalf("checkout transaction failed: %v", err)
	}

	entries, err := cartRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(entries) != 0 {
		t.Error("cart should be empty after checkout")
	}

	order, err := orderRepo.FindByIDForUser(ctx, orderID, user.ID)
	if err != nil {
		t.Fatalf("order should be readable after commit: %v", err)
	}
	if order.TotalAmount != 99.98 {
		t.Errorf("expected total 99.98, got %v", order.TotalAmount)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(order.Items))
	}
	if order.Items[0].Name != "Checkout Gadget" {
		t.Errorf("line item should snapshot the product name, got %q", order.Items[0].Name)
	}
}

// Two checkouts of the same cart racing each other. The row locks taken by
// LockCart serialize them: whichever transaction commits first wins, the
// other one observes the cleared cart and places nothing.
func TestConcurrentCheckoutsProduceExactlyOneOrder(t *testing.T) {
	ctx := context.Background()
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	store := NewCheckoutStore(testDB)

	user := mustCreateUser(t, "concurrent-checkout@example.com")
	product := mustCreateProduct(t, "Contended Gadget", 25.00)

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		AddedAt:   time.Now(),
	}
	if err := cartRepo.Upsert(ctx, item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	errNothingToOrder := errors.New("nothing to order")

	checkout := func() error {
		return store.WithinTx(ctx, func(tx CheckoutTx) error {
			cartItems, err := tx.LockCart(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(cartItems) == 0 {
				return errNothingToOrder
			}

			locked, err := tx.FindProduct(ctx, cartItems[0].ProductID)
			if err != nil {
				return err
			}

			lineTotal := locked.Price * float64(cartItems[0].Quantity)
			order := &domain.Order{
				ID:     uuid.New(),
				UserID: user.ID,
				Items: []domain.OrderItem{{
					ProductID: locked.ID,
					Name:      locked.Name,
					UnitPrice: locked.Price,
					Quantity:  cartItems[0].Quantity,
					LineTotal: lineTotal,
				}},
				TotalAmount: lineTotal,
				Status:      domain.OrderStatusPending,
				CreatedAt:   time.Now(),
			}
			if err := tx.CreateOrder(ctx, order); err != nil {
				return err
			}
			return tx.ClearCart(ctx, user.ID)
		})
	}

	start := make(chan struct{})
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- checkout()
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var placed, emptied int
	for err := range results {
		switch {
		case err == nil:
			placed++
		case errors.Is(err, errNothingToOrder):
			emptied++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	if placed != 1 || emptied != 1 {
		t.Fatalf("expected one winner and one empty-cart loser, got %d placed, %d empty", placed, emptied)
	}

	orders, err := orderRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected exactly one order row, got %d", len(orders))
	}
	if orders[0].TotalAmount != 50.00 {
		t.Errorf("expected total 50.00, got %v", orders[0].TotalAmount)
	}

	entries, err := cartRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("cart FindByUser failed: %v", err)
	}
	if len(entries) != 0 {
		t.Error("cart should be empty after the race settles")
	}
}

func TestCheckoutTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	cartRepo := NewCartRepository(testDB)
	store := NewCheckoutStore(testDB)

	user := mustCreateUser(t, "rollback@example.com")
	product := mustCreateProduct(t, "Rollback Gadget", 5.00)

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  1,
		AddedAt:   time.Now(),
	}
	if err := cartRepo.Upsert(ctx, item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	sentinel := sql.ErrTxDone
	err := store.WithinTx(ctx, func(tx CheckoutTx) error {
		if err := tx.ClearCart(ctx, user.ID); err != nil {
			return err
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("expected the sentinel error back, got %v", err)
	}

	entries, err := cartRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(entries) != 1 {
		t.Error("cart clear inside a failed transaction must be rolled back")
	}
}
