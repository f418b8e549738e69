package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"techhub/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest("GET", "/admin", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestProperty_OnlyAdminRolePassesAdminGate(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only the admin role reaches the handler", prop.ForAll(
		func(role string) bool {
			logger, _ := zap.NewDevelopment()
			middleware := RequireAdmin(logger)

			handlerCalled := false
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithRole(role))

			if role == domain.RoleAdmin {
				return handlerCalled && w.Code == http.StatusOK
			}
			return !handlerCalled && w.Code == http.StatusForbidden
		},
		gen.OneConstOf("admin", "user", "moderator", "", "ADMIN"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAdminGateRejectsMissingRole(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := RequireAdmin(logger)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No role in context at all.
	req := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without a role, got %d", w.Code)
	}
}
