package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"contactbook/internal/contact/models"
	"contactbook/internal/platform/middleware"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/httputil"
)

const maxBodyBytes = 1 << 20

// Service defines the contact operations the HTTP layer depends on.
type Service interface {
	Create(ctx context.Context, id, firstName, lastName, phone, address string) (*models.Contact, error)
	Get(ctx context.Context, id string) (*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	Update(ctx context.Context, id string, patch models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
}

// Handler exposes the contact directory over HTTP/JSON.
type Handler struct {
	logger   *slog.Logger
	contacts Service
	audit    AuditReader
}

type Option func(*Handler)

// WithAuditReader enables the audit trail routes.
func WithAuditReader(reader AuditReader) Option {
	return func(h *Handler) {
		h.audit = reader
	}
}

// New creates a new contact Handler.
func New(contacts Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		contacts: contacts,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the contact routes with the chi router. The audit
// routes are added only when an AuditReader is configured.
func (h *Handler) Register(r chi.Router) {
	contactRouter := chi.NewRouter()
	contactRouter.Use(h.middlewares()...)
	contactRouter.Post("/", h.handleCreateContact)
	contactRouter.Get("/", h.handleListContacts)
	contactRouter.Get("/{id}", h.handleGetContact)
	contactRouter.Patch("/{id}", h.handleUpdateContact)
	contactRouter.Delete("/{id}", h.handleDeleteContact)
	if h.audit != nil {
		contactRouter.Get("/{id}/audit", h.handleContactAudit)
	}
	r.Mount("/contacts", contactRouter)

	if h.audit != nil {
		auditRouter := chi.NewRouter()
		auditRouter.Use(h.middlewares()...)
		auditRouter.Get("/", h.handleRecentAudit)
		r.Mount("/audit", auditRouter)
	}
}

func (h *Handler) middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Recovery(h.logger),
		middleware.RequestID,
		middleware.RequestTime,
		middleware.Logger(h.logger),
		chimiddleware.Timeout(30 * time.Second),
		middleware.ContentTypeJSON,
	}
}

func (h *Handler) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req CreateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create contact request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	contact, err := h.contacts.Create(ctx, *req.ID, *req.FirstName, *req.LastName, *req.Phone, *req.Address)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create contact", err)
		return
	}

	w.Header().Set("Location", "/contacts/"+contact.ID())
	httputil.WriteJSON(w, http.StatusCreated, contact)
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contacts, err := h.contacts.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list contacts", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListContactsResponse{Contacts: contacts, Count: len(contacts)})
}

func (h *Handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contact, err := h.contacts.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get contact", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, contact)
}

func (h *Handler) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req UpdateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid update contact request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	contact, err := h.contacts.Update(ctx, chi.URLParam(r, "id"), req.ToPatch())
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update contact", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, contact)
}

func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.contacts.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(ctx, w, "failed to delete contact", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError logs unexpected failures at error level and expected
// rejections at warn level, then writes the error envelope.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
