package contact

import (
	"log/slog"

	"contactbook/internal/contact/handler"
	"contactbook/internal/contact/service"
)

// Service exposes the contact directory.
type Service = service.Service

// Handler wires HTTP endpoints to the contact service.
type Handler = handler.Handler

// NewService constructs a directory over a fresh in-memory store.
func NewService(opts ...service.Option) *Service {
	return service.NewInMemory(opts...)
}

// NewHandler constructs an HTTP handler for the contact routes.
func NewHandler(s *Service, logger *slog.Logger, opts ...handler.Option) *Handler {
	return handler.New(s, logger, opts...)
}
