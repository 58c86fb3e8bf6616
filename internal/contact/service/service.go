package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	contactmetrics "contactbook/internal/contact/metrics"
	"contactbook/internal/contact/models"
	"contactbook/internal/contact/store"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/audit"
	"contactbook/pkg/platform/sentinel"
)

const tracerName = "contactbook/internal/contact/service"

// Store is the keyed contact storage the service owns.
type Store interface {
	CreateIfIDAvailable(ctx context.Context, c *models.Contact) error
	FindByID(ctx context.Context, id string) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	Execute(ctx context.Context, id string, validate func(*models.Contact) error, mutate func(*models.Contact) error) (*models.Contact, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*models.Contact, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the contact directory. It enforces ID uniqueness, delegates
// field validation to models.Contact and never hands out stored records:
// every contact it returns is a copy.
//
// Two API flavors are offered. AddContact, DeleteContact, UpdateContact and
// GetContact report success as a bool, treating duplicates and unknown IDs as
// expected outcomes. Add, Delete, Update and Get return coded domain errors
// for callers that need the reason.
type Service struct {
	contacts     Store
	auditEmitter *auditEmitter
	metrics      *contactmetrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	atomic       bool
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *contactmetrics.Metrics
	tracer         trace.Tracer
	atomicUpdates  bool
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *contactmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = tracer
	}
}

// WithAtomicUpdates makes Update validate every provided field before
// applying any of them, so a rejected update leaves the contact untouched.
// Without it, fields set before the rejected one keep their new values.
func WithAtomicUpdates() Option {
	return func(c *serviceConfig) {
		c.atomicUpdates = true
	}
}

// New constructs a Service over contacts.
func New(contacts Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracer := cfg.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Service{
		contacts:     contacts,
		auditEmitter: newAuditEmitter(logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
		logger:       logger,
		tracer:       tracer,
		atomic:       cfg.atomicUpdates,
	}
}

// NewInMemory constructs a Service with its own empty in-memory store.
func NewInMemory(opts ...Option) *Service {
	return New(store.NewInMemory(), opts...)
}

// Create constructs a contact from raw field values and adds it.
func (s *Service) Create(ctx context.Context, id, firstName, lastName, phone, address string) (*models.Contact, error) {
	c, err := models.NewContact(id, firstName, lastName, phone, address)
	if err != nil {
		s.incrementRejected("add", "validation")
		return nil, err
	}
	if err := s.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Add stores c unless it is nil or its ID is taken.
func (s *Service) Add(ctx context.Context, c *models.Contact) (err error) {
	ctx, end := s.startSpan(ctx, "add")
	defer func() { end(err) }()

	if c == nil {
		s.incrementRejected("add", "missing")
		return dErrors.New(dErrors.CodeBadRequest, "contact is required")
	}

	if err := s.contacts.CreateIfIDAvailable(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.incrementRejected("add", "conflict")
			return dErrors.New(dErrors.CodeConflict, "contact ID already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add contact")
	}

	s.auditEmitter.emitContactAdded(ctx, models.ContactAdded{ContactID: c.ID()})
	if s.metrics != nil {
		s.metrics.IncrementAdded()
	}
	return nil
}

// AddContact reports whether c was stored. It returns false, without changing
// the directory, for a nil contact or a duplicate ID.
func (s *Service) AddContact(ctx context.Context, c *models.Contact) bool {
	return s.Add(ctx, c) == nil
}

// Delete removes the contact stored under id.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, end := s.startSpan(ctx, "delete", attribute.String("contact.id", id))
	defer func() { end(err) }()

	if id == "" {
		s.incrementRejected("delete", "missing")
		return dErrors.New(dErrors.CodeBadRequest, "contact ID is required")
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementRejected("delete", "not_found")
		}
		return wrapContactErr(err, "failed to delete contact")
	}

	s.auditEmitter.emitContactDeleted(ctx, models.ContactDeleted{ContactID: id})
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// DeleteContact reports whether a contact was removed. Empty and unknown IDs
// return false.
func (s *Service) DeleteContact(ctx context.Context, id string) bool {
	return s.Delete(ctx, id) == nil
}

// Update applies the provided fields of patch to the contact stored under id
// and returns the updated copy. Fields not provided are never touched.
//
// Fields are set in the order first name, last name, phone, address under the
// store's lock, and the first rejected value stops the update. Fields set
// before the rejection keep their new values and are still audited. Services
// built WithAtomicUpdates validate the whole patch first and change nothing
// on rejection.
func (s *Service) Update(ctx context.Context, id string, patch models.ContactPatch) (_ *models.Contact, err error) {
	ctx, end := s.startSpan(ctx, "update", attribute.String("contact.id", id))
	defer func() { end(err) }()

	var validate func(*models.Contact) error
	if s.atomic {
		validate = func(*models.Contact) error {
			return patch.Validate()
		}
	}
	var applied []string
	updated, err := s.contacts.Execute(ctx, id, validate, func(c *models.Contact) error {
		var applyErr error
		applied, applyErr = patch.Apply(c)
		return applyErr
	})
	if len(applied) > 0 {
		s.auditEmitter.emitContactUpdated(ctx, models.ContactUpdated{ContactID: id, Fields: applied})
	}
	if err != nil {
		switch {
		case models.IsValidationError(err):
			s.incrementRejected("update", "validation")
			return nil, err
		case errors.Is(err, sentinel.ErrNotFound):
			s.incrementRejected("update", "not_found")
		}
		return nil, wrapContactErr(err, "failed to update contact")
	}

	if !patch.IsEmpty() && s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	return updated, nil
}

// UpdateContact reports whether the whole update was applied. It returns
// false for an unknown ID or when any provided field is invalid, in which case
// earlier fields of the patch may already be set (see Update). The reason is
// logged at warn level but not returned; use Update to receive it.
func (s *Service) UpdateContact(ctx context.Context, id string, patch models.ContactPatch) bool {
	if _, err := s.Update(ctx, id, patch); err != nil {
		s.logger.WarnContext(ctx, "contact update rejected",
			"contact_id", id,
			"reason", err.Error(),
		)
		return false
	}
	return true
}

// Get returns a copy of the contact stored under id.
func (s *Service) Get(ctx context.Context, id string) (_ *models.Contact, err error) {
	ctx, end := s.startSpan(ctx, "get", attribute.String("contact.id", id))
	defer func() { end(err) }()

	c, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, wrapContactErr(err, "failed to load contact")
	}
	return c, nil
}

// GetContact looks up id. The returned contact is a copy: changing it does
// not change the directory.
func (s *Service) GetContact(ctx context.Context, id string) (*models.Contact, bool) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, false
	}
	return c, true
}

// List returns copies of every stored contact ordered by ID.
func (s *Service) List(ctx context.Context) (_ []*models.Contact, err error) {
	ctx, end := s.startSpan(ctx, "list")
	defer func() { end(err) }()

	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contacts")
	}
	return contacts, nil
}

// Count returns the number of stored contacts.
func (s *Service) Count(ctx context.Context) int {
	n, err := s.contacts.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to count contacts", "error", err)
		return 0
	}
	return n
}

// startSpan opens a tracing span and returns a finisher that records the
// operation's outcome on the span and the latency histogram.
func (s *Service) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact."+operation, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, start)
		}
	}
}

func (s *Service) incrementRejected(operation, reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(operation, reason)
	}
}

func wrapContactErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "contact not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
