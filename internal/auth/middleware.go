package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const userKey = "auth_user"

// Exact 401 messages returned by the request gate.
const (
	MsgNoToken      = "Not authorized, no token"
	MsgTokenExpired = "Not authorized, token expired"
	MsgTokenFailed  = "Not authorized, token failed"
)

// TokenVerifier is the slice of TokenManager the middleware needs. Kept small
// so tests can fake it.
type TokenVerifier interface {
	VerifyAccess(token string) (*Claims, error)
}

// Middleware validates bearer tokens and resolves the calling user.
type Middleware struct {
	tokens TokenVerifier
	users  repository.UserRepository
	logger *zap.Logger
}

// NewMiddleware constructs the request gate.
func NewMiddleware(tokens TokenVerifier, users repository.UserRepository, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, logger: logger}
}

// Handle enforces authentication for protected routes. Exactly one user read
// happens per authenticated request.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return apperrors.NewUnauthorized(MsgNoToken)
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenStr == "" {
		return apperrors.NewUnauthorized(MsgNoToken)
	}

	claims, err := m.tokens.VerifyAccess(tokenStr)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			m.logger.Info("access token expired", zap.String("path", c.Path()))
			return apperrors.NewUnauthorized(MsgTokenExpired)
		}
		m.logger.Error("access token rejected", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewUnauthorized(MsgTokenFailed)
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Token subject was deleted after issuance; deny rather than
			// proceed with an empty identity.
			m.logger.Error("token subject no longer exists", zap.String("user_id", claims.UserID))
			return apperrors.NewUnauthorized(MsgTokenFailed)
		}
		return apperrors.MapError(err)
	}

	c.Locals(userKey, user)
	return c.Next()
}

// UserFromContext retrieves the authenticated user set by Handle. The second
// return value is false when no authenticated user is attached.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
