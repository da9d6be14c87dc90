package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/police-dashboard/internal/auth"
	"github.com/spec-kit/police-dashboard/internal/config"
	"github.com/spec-kit/police-dashboard/internal/domain"
	"github.com/spec-kit/police-dashboard/internal/events"
	"github.com/spec-kit/police-dashboard/internal/repository"
	apperrors "github.com/spec-kit/police-dashboard/pkg/util"
)

// Bootstrap admin identity, created once at startup if absent.
const (
	bootstrapAdminUsername = "admin"
	bootstrapAdminEmail    = "admin@police.gov.in"
)

// RegisterInput carries a registration candidate. Password is plaintext
// here and replaced by its hash before anything is stored or returned.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Phone      string
	Department string
	Rank       string
	StationID  string
	Role       domain.Role
}

// AccountService coordinates registration, login and account management.
type AccountService struct {
	accounts    repository.AccountRepository
	tokenMgr    *auth.TokenManager
	revocations auth.RevocationStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	bcryptCost  int
	bootstrap   config.BootstrapConfig
}

// AccountDependencies encapsulates collaborator requirements for the service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	Revocations auth.RevocationStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	revocations := deps.Revocations
	if revocations == nil {
		revocations = auth.NoopRevocationStore{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts:    deps.AccountRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		revocations: revocations,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		bootstrap:   cfg.Bootstrap,
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new officer account. The pre-checks report which field
// collided; the unique indexes remain the actual enforcement point, so a
// racing insert still comes back as a Conflict from the repository.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	if _, err := s.accounts.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already registered", map[string]any{"field": "username"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if _, err := s.accounts.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Department:   input.Department,
		Rank:         input.Rank,
		StationID:    input.StationID,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventAccountRegistered, account, events.AccountRegisteredPayload{
		Role:      account.Role,
		StationID: account.StationID,
	})
	return account, nil
}

// Login verifies credentials and issues a bearer token. Unknown usernames
// and wrong passwords produce an identical failure so callers cannot
// enumerate accounts; a deactivated account with correct credentials is
// rejected as Forbidden instead.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid username or password")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if !auth.VerifyPassword(password, account.PasswordHash) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid username or password")
	}

	if !account.IsActive {
		return nil, "", time.Time{}, apperrors.NewForbidden("account is deactivated")
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	account.LastLogin = &now

	token, expiresAt, err := s.tokenMgr.Issue(account.Username)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventAccountLogin, account, nil)
	return account, token, expiresAt, nil
}

// Logout acknowledges the request. Tokens are stateless, so there is
// nothing to invalidate server-side; clients discard the token.
func (s *AccountService) Logout(_ context.Context, _ *domain.Account) error {
	return nil
}

// GetByID fetches one account for the user-management endpoints.
func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// List returns every stored account.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return accounts, nil
}

// Deactivate marks the target inactive and revokes its subject for one
// token lifetime, so outstanding tokens stop working immediately. Role
// enforcement happens at the route; actor is recorded for the audit trail.
func (s *AccountService) Deactivate(ctx context.Context, actor *domain.Account, targetID string) error {
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return apperrors.MapError(err)
	}

	if err := s.accounts.SetActive(ctx, target.ID, false); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return apperrors.MapError(err)
	}

	if err := s.revocations.Revoke(ctx, target.Username, s.tokenMgr.TTL()); err != nil {
		s.logger.Warn("failed to revoke subject", zap.String("username", target.Username), zap.Error(err))
	}

	payload := events.AccountDeactivatedPayload{}
	if actor != nil {
		payload.ActorUsername = actor.Username
	}
	s.publish(ctx, events.EventAccountDeactivated, target, payload)
	return nil
}

// EnsureDefaultAdmin creates the bootstrap admin account if absent. It is
// idempotent across restarts: existence is checked first, and a duplicate
// insert lost to a concurrent replica is tolerated.
func (s *AccountService) EnsureDefaultAdmin(ctx context.Context) error {
	if _, err := s.accounts.GetByUsername(ctx, bootstrapAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(s.bootstrap.AdminPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	admin := &domain.Account{
		Username:     bootstrapAdminUsername,
		Email:        bootstrapAdminEmail,
		PasswordHash: hash,
		FullName:     "System Administrator",
		Phone:        "+91-9999999999",
		Department:   "IT Department",
		Rank:         "Administrator",
		StationID:    "ADMIN001",
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, admin); err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "CONFLICT" {
			return nil
		}
		return apperrors.MapError(err)
	}

	if s.bootstrap.AdminPassword == config.DefaultAdminPassword {
		s.logger.Warn("default admin account created with well-known password; set ADMIN_BOOTSTRAP_PASSWORD",
			zap.String("username", bootstrapAdminUsername))
	} else {
		s.logger.Info("default admin account created", zap.String("username", bootstrapAdminUsername))
	}
	return nil
}

func (s *AccountService) publish(ctx context.Context, eventType events.EventType, account *domain.Account, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: account.ID,
		Username:  account.Username,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
