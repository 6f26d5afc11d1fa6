package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clientkit/internal/domain/user"
	apperrors "clientkit/pkg/errors"

	"github.com/labstack/echo/v4"
)

// UserFinder resolves the stored record behind a verified token.
type UserFinder interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

type Middleware struct {
	jwtService *JWTService
	users      UserFinder
}

func NewMiddleware(jwtService *JWTService, users UserFinder) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		users:      users,
	}
}

// RequireJWT verifies the bearer token and loads the user it names. A token
// whose user record is gone (logged out) is rejected.
func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingAuthorization)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			u, err := m.users.Get(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return respondError(c, http.StatusUnauthorized, msgSessionEnded)
				}
				return err
			}

			c.Set(ContextKeyUserID, u.ID)
			c.Set(ContextKeyUser, u)

			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func GetUserID(c echo.Context) (string, error) {
	userID := c.Get(ContextKeyUserID)
	if userID == nil {
		return "", apperrors.Unauthorized(msgUserNotAuthenticated)
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.InternalServer(msgInvalidUserIDCtx, nil)
	}

	return id, nil
}

func GetUser(c echo.Context) (*user.User, error) {
	u, ok := c.Get(ContextKeyUser).(*user.User)
	if !ok || u == nil {
		return nil, apperrors.Unauthorized(msgUserNotAuthenticated)
	}
	return u, nil
}
