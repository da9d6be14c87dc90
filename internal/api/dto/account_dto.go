package dto

import (
	"time"

	"github.com/spec-kit/police-dashboard/internal/domain"
)

// RegisterRequest payload for new officer accounts.
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Rank       string `json:"rank"`
	StationID  string `json:"station_id"`
	Role       string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for token issuance.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public profile shape. The password hash is never
// part of it.
type AccountResponse struct {
	ID         string      `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Phone      string      `json:"phone"`
	Department string      `json:"department"`
	Rank       string      `json:"rank"`
	StationID  string      `json:"station_id"`
	Role       domain.Role `json:"role"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
	LastLogin  *time.Time  `json:"last_login"`
}

// NewAccountResponse maps a stored account onto its public profile.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:         account.ID,
		Username:   account.Username,
		Email:      account.Email,
		FullName:   account.FullName,
		Phone:      account.Phone,
		Department: account.Department,
		Rank:       account.Rank,
		StationID:  account.StationID,
		Role:       account.Role,
		IsActive:   account.IsActive,
		CreatedAt:  account.CreatedAt,
		LastLogin:  account.LastLogin,
	}
}
