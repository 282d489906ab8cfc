package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/authz"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// viewAsHeader lets an admin evaluate reads in another user's context. The
// acting identity stays on the token for auditing.
const viewAsHeader = "X-View-As-User"

// AuthMiddleware validates bearer tokens and builds the request identity.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
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

	actor, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !actor.Active {
		return apperrors.NewUnauthorized("account disabled")
	}

	identity := authz.Identity{Actor: actor}

	if viewAsID := c.Get(viewAsHeader); viewAsID != "" {
		if !authz.CanUseViewAs(actor) {
			return apperrors.NewPermissionDenied("view-as is admin only")
		}
		viewAs, err := m.users.GetByID(c.Context(), viewAsID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("user", map[string]any{"id": viewAsID})
			}
			return apperrors.MapError(err)
		}
		identity.ViewAs = viewAs
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the request identity.
func IdentityFromContext(c *fiber.Ctx) (authz.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return authz.Identity{}, false
	}
	identity, ok := val.(authz.Identity)
	return identity, ok
}
