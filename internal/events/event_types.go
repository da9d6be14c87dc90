package events

import (
	"time"

	"github.com/spec-kit/police-dashboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered  EventType = "account_registered"
	EventAccountLogin       EventType = "account_login"
	EventAccountDeactivated EventType = "account_deactivated"
)

// Event represents an account lifecycle event emitted by services.
// Payloads never carry credentials.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Role      domain.Role `json:"role"`
	StationID string      `json:"station_id"`
}

// AccountDeactivatedPayload payload.
type AccountDeactivatedPayload struct {
	ActorUsername string `json:"actor_username"`
}
