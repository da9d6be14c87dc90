package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/police-dashboard/internal/api/dto"
	"github.com/spec-kit/police-dashboard/internal/auth"
	"github.com/spec-kit/police-dashboard/internal/domain"
	"github.com/spec-kit/police-dashboard/internal/service"
	apperrors "github.com/spec-kit/police-dashboard/pkg/util"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accountService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	input, err := validateRegisterRequest(req)
	if err != nil {
		return err
	}

	account, err := h.accounts.Register(c.Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	account, token, expiresAt, err := h.accounts.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewAccountResponse(account),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; this is an
// acknowledgement only.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	account, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.accounts.Logout(c.Context(), account); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

func validateRegisterRequest(req dto.RegisterRequest) (service.RegisterInput, error) {
	details := map[string]any{}
	if len(req.Username) < 3 {
		details["username"] = "must be at least 3 characters"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		details["email"] = "must be a valid email address"
	}
	if len(req.Password) < 6 {
		details["password"] = "must be at least 6 characters"
	}
	if len(req.FullName) < 2 {
		details["full_name"] = "must be at least 2 characters"
	}
	if len(req.Phone) < 10 {
		details["phone"] = "must be at least 10 characters"
	}

	role := domain.RoleOfficer
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			details["role"] = "must be one of officer, supervisor, admin"
		} else {
			role = parsed
		}
	}

	if len(details) > 0 {
		return service.RegisterInput{}, apperrors.NewValidationError("invalid registration payload", details)
	}

	return service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Department: req.Department,
		Rank:       req.Rank,
		StationID:  req.StationID,
		Role:       role,
	}, nil
}
