package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"techhub/internal/domain"
	"techhub/internal/repository"
	"techhub/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Mock user repository backing a real auth service.
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	if len(m.users) == 0 {
		user.Role = domain.RoleAdmin
	} else {
		user.Role = domain.RoleUser
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func newTestAuthHandler() *AuthHandler {
	userRepo := newMockUserRepository()
	authService := service.NewAuthService(userRepo, "test-secret")
	logger, _ := zap.NewDevelopment()
	return NewAuthHandler(authService, logger)
}

func postJSON(handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	reqBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with invalid data returns 400", prop.ForAll(
		func(invalidCase int) bool {
			handler := newTestAuthHandler()

			var reqBody RegisterRequest
			switch invalidCase % 4 {
			case 0:
				// Empty email
				reqBody = RegisterRequest{Email: "", Password: "ValidPass123", Name: "Taylor"}
			case 1:
				// Invalid email format
				reqBody = RegisterRequest{Email: "not-an-email", Password: "ValidPass123", Name: "Taylor"}
			case 2:
				// Password too short
				reqBody = RegisterRequest{Email: "valid@example.com", Password: "short", Name: "Taylor"}
			case 3:
				// Missing name
				reqBody = RegisterRequest{Email: "valid@example.com", Password: "ValidPass123", Name: ""}
			}

			w := postJSON(handler.Register, "/api/auth/register", reqBody)
			return w.Code == http.StatusBadRequest
		},
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegisterReturnsTokenAndProfile(t *testing.T) {
	handler := newTestAuthHandler()

	w := postJSON(handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "first@example.com",
		Password: "ValidPass123",
		Name:     "First Customer",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an AuthResponse: %v", err)
	}
	if resp.Token == "" {
		t.Error("registration should return a session token")
	}
	if resp.User.Email != "first@example.com" {
		t.Errorf("unexpected profile email: %q", resp.User.Email)
	}
	// First account in an empty store
	if resp.User.Role != domain.RoleAdmin {
		t.Errorf("first registrant should be admin, got %q", resp.User.Role)
	}
}

func TestRegisterDuplicateEmailReturns409(t *testing.T) {
	handler := newTestAuthHandler()

	body := RegisterRequest{Email: "dup@example.com", Password: "ValidPass123", Name: "Dup"}
	if w := postJSON(handler.Register, "/api/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first registration should succeed, got %d", w.Code)
	}

	w := postJSON(handler.Register, "/api/auth/register", body)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestLoginWithWrongCredentialsReturns401(t *testing.T) {
	handler := newTestAuthHandler()

	register := RegisterRequest{Email: "login@example.com", Password: "ValidPass123", Name: "Login"}
	if w := postJSON(handler.Register, "/api/auth/register", register); w.Code != http.StatusCreated {
		t.Fatalf("registration should succeed, got %d", w.Code)
	}

	cases := []LoginRequest{
		{Email: "login@example.com", Password: "WrongPass123"},
		{Email: "nobody@example.com", Password: "ValidPass123"},
	}
	for _, c := range cases {
		w := postJSON(handler.Login, "/api/auth/login", c)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for %q, got %d", c.Email, w.Code)
		}
	}
}

func TestLoginReturnsFreshToken(t *testing.T) {
	handler := newTestAuthHandler()

	register := RegisterRequest{Email: "fresh@example.com", Password: "ValidPass123", Name: "Fresh"}
	if w := postJSON(handler.Register, "/api/auth/register", register); w.Code != http.StatusCreated {
		t.Fatalf("registration should succeed, got %d", w.Code)
	}

	w := postJSON(handler.Login, "/api/auth/login", LoginRequest{
		Email:    "fresh@example.com",
		Password: "ValidPass123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an AuthResponse: %v", err)
	}
	if resp.Token == "" {
		t.Error("login should return a session token")
	}
}
