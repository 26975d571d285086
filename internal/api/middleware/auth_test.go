package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/infrastructure/credentials"
)

const secret = "test-secret-with-at-least-32-bytes!!"

func runAuth(t *testing.T, header string, verifier TokenVerifier) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		if c.Get(KeyUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(KeyUserID) != int64(7) {
			t.Fatalf("user id not set")
		}
		if c.Get(KeyRole) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware(t *testing.T) {
	issuer := credentials.NewTokenIssuer(secret, time.Hour)
	valid, err := issuer.Issue(7, "alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	expired, err := credentials.NewTokenIssuer(secret, time.Hour).WithClock(func() time.Time { return past }).Issue(7, "alice")
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	forged, err := credentials.NewTokenIssuer("another-secret-with-32-bytes-or-more", time.Hour).Issue(7, "alice")
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, true},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, false},
		{"wrong scheme", "Token " + valid, http.StatusForbidden, false},
		{"garbage token", "Bearer not-a-token", http.StatusForbidden, false},
		{"expired token", "Bearer " + expired, http.StatusForbidden, false},
		{"wrong secret", "Bearer " + forged, http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runAuth(t, tt.header, issuer)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantCalled {
				t.Fatalf("next called = %v, want %v", called, tt.wantCalled)
			}
		})
	}
}
