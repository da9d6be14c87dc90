package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/police-dashboard/internal/domain"
	"github.com/spec-kit/police-dashboard/internal/repository"
	apperrors "github.com/spec-kit/police-dashboard/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens and loads the calling account.
type Middleware struct {
	tokens      *TokenManager
	accounts    repository.AccountRepository
	revocations RevocationStore
}

// NewMiddleware constructs the access guard.
func NewMiddleware(tokens *TokenManager, accounts repository.AccountRepository, revocations RevocationStore) *Middleware {
	if revocations == nil {
		revocations = NoopRevocationStore{}
	}
	return &Middleware{tokens: tokens, accounts: accounts, revocations: revocations}
}

// Handle enforces authentication for protected routes. Every failure mode
// surfaces as 401; account status is not rechecked here (tokens are
// stateless), only explicit revocation marks are honored.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	subject, err := m.tokens.Decode(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	if revoked, _ := m.revocations.IsRevoked(c.Context(), subject); revoked {
		return apperrors.NewUnauthorized("token revoked")
	}

	account, err := m.accounts.GetByUsername(c.Context(), subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, account)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated account.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Account, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	account, ok := val.(*domain.Account)
	return account, ok
}
