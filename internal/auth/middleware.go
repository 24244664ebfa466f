package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trackloop/issue-tracker/internal/domain"
	apperrors "github.com/trackloop/issue-tracker/pkg/util"
)

const currentUserKey = "current_user"

// AuthMiddleware validates bearer tokens and loads the current-user context.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(currentUserKey, domain.CurrentUser{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
	return c.Next()
}

// CurrentUserFromContext returns the authenticated caller, if any.
func CurrentUserFromContext(c *fiber.Ctx) (domain.CurrentUser, bool) {
	user, ok := c.Locals(currentUserKey).(domain.CurrentUser)
	return user, ok
}
