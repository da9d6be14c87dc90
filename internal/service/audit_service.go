package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/police-dashboard/internal/events"
)

// AuditService records account lifecycle events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to account events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAccountRegistered, a.handle)
	a.dispatcher.Subscribe(events.EventAccountLogin, a.handle)
	a.dispatcher.Subscribe(events.EventAccountDeactivated, a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("account_id", event.AccountID),
		zap.String("username", event.Username),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
