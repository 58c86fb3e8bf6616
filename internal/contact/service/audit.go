package service

import (
	"context"
	"log/slog"

	"contactbook/internal/contact/models"
	"contactbook/pkg/platform/audit"
	"contactbook/pkg/requestcontext"
)

// auditEmitter writes an audit log line for every directory mutation and,
// when a publisher is configured, records the matching audit event.
// Publishing failures are logged and never fail the mutation.
type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emitContactAdded(ctx context.Context, ev models.ContactAdded) {
	e.emit(ctx, audit.EventContactAdded, ev.ContactID, nil)
}

func (e *auditEmitter) emitContactDeleted(ctx context.Context, ev models.ContactDeleted) {
	e.emit(ctx, audit.EventContactDeleted, ev.ContactID, nil)
}

func (e *auditEmitter) emitContactUpdated(ctx context.Context, ev models.ContactUpdated) {
	e.emit(ctx, audit.EventContactUpdated, ev.ContactID, ev.Fields)
}

func (e *auditEmitter) emit(ctx context.Context, event audit.AuditEvent, contactID string, fields []string) {
	requestID := requestcontext.RequestID(ctx)
	args := []any{
		"contact_id", contactID,
		"event", string(event),
		"log_type", "audit",
	}
	if len(fields) > 0 {
		args = append(args, "fields", fields)
	}
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	e.logger.InfoContext(ctx, string(event), args...)

	if e.publisher == nil {
		return
	}
	err := e.publisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		ContactID: contactID,
		Action:    string(event),
		Fields:    fields,
		RequestID: requestID,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "failed to publish audit event",
			"event", string(event),
			"contact_id", contactID,
			"error", err,
		)
	}
}
