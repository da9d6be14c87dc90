package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/police-dashboard/internal/api/dto"
	"github.com/spec-kit/police-dashboard/internal/auth"
	"github.com/spec-kit/police-dashboard/internal/service"
	apperrors "github.com/spec-kit/police-dashboard/pkg/util"
)

// UsersHandler exposes the role-gated user-management endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accountService}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	accounts, err := h.accounts.List(c.Context())
	if err != nil {
		return err
	}

	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetByID handles GET /api/users/:id.
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Deactivate handles PUT /api/users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseAccountID(c)
	if err != nil {
		return err
	}

	actor, _ := auth.PrincipalFromContext(c)
	if err := h.accounts.Deactivate(c.Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deactivated"}})
}

// parseAccountID distinguishes a malformed id (400) from an absent one
// (404, raised later by the lookup).
func parseAccountID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid user id", map[string]any{"id": id})
	}
	return id, nil
}
