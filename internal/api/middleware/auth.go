package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/infrastructure/credentials"
)

// Context keys set by Auth.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*credentials.Claims, error)
}

// Auth validates the bearer token and injects its claims into the context.
// A request without a token gets 401; a token that is malformed, forged or
// expired gets 403.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "invalid authorization header").SetInternal(domain.ErrForbidden)
			}

			claims, err := verifier.Verify(raw)
			switch {
			case errors.Is(err, credentials.ErrTokenMissing):
				return echo.NewHTTPError(http.StatusUnauthorized, "Token no proporcionado").SetInternal(domain.ErrUnauthenticated)
			case errors.Is(err, credentials.ErrTokenExpired):
				return echo.NewHTTPError(http.StatusForbidden, "Token expirado").SetInternal(domain.ErrForbidden)
			case err != nil:
				return echo.NewHTTPError(http.StatusForbidden, "Token inválido").SetInternal(domain.ErrForbidden)
			}

			c.Set(KeyUserID, claims.UserID)
			c.Set(KeyUsername, claims.Username)
			c.Set(KeyRole, claims.Role)

			return next(c)
		}
	}
}

// bearerToken returns "" for an absent header so the verifier reports it as
// missing. A header present in any other shape than "Bearer <token>" is an error.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", errors.New("not a bearer credential")
	}
	return strings.TrimSpace(token), nil
}
