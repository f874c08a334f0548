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

	"crm/internal/contact/events"
	"crm/internal/contact/metrics"
	"crm/internal/contact/models"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/requestcontext"
)

// Store is the persistence collaborator. Implementations return
// sentinel.ErrNotFound for missing records and apply an Update atomically.
type Store interface {
	IsValidID(raw string) bool
	Insert(ctx context.Context, c *models.Contact) (*models.Contact, error)
	FindAll(ctx context.Context) ([]*models.Contact, error)
	FindByID(ctx context.Context, contactID id.ContactID) (*models.Contact, error)
	UpdateByID(ctx context.Context, contactID id.ContactID, u models.Update) (*models.Contact, error)
	DeleteByID(ctx context.Context, contactID id.ContactID) (bool, error)
	Health(ctx context.Context) error
}

// EventPublisher receives lifecycle events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Service orchestrates validate-then-persist for contact records.
type Service struct {
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher EventPublisher
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tracer: otel.Tracer("crm/internal/contact/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health reports whether the store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

func (s *Service) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "contact."+op, trace.WithAttributes(attrs...))
}

// finish records err on span and the operation duration, then ends the span.
func (s *Service) finish(span trace.Span, op string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
	span.End()
}

// parseID runs the identifier shape check before any lookup.
func (s *Service) parseID(raw string) (id.ContactID, error) {
	if !s.store.IsValidID(raw) {
		return id.NilContactID, invalidIdentifier()
	}
	return id.ParseContactID(raw)
}

func invalidIdentifier() error {
	return dErrors.New(dErrors.CodeInvalidInput, "The provided contact ID is not valid").
		WithTitle("Invalid contact ID")
}

func notFound() error {
	return dErrors.New(dErrors.CodeNotFound, "No contact with the specified ID was found").
		WithTitle("Contact not found")
}

// storageFailure keeps the collaborator's error text as the response message.
func storageFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "storage did not respond in time").WithTitle("Storage timeout")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, err.Error()).WithTitle("Internal server error")
}

func (s *Service) rejected(ctx context.Context, op string, err error) error {
	field := dErrors.FieldOf(err)
	if s.metrics != nil {
		label := field
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			label = "id"
		}
		s.metrics.IncRejected(label)
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "contact rejected",
			"operation", op,
			"field", field,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return err
}

func (s *Service) storageError(ctx context.Context, op string, err error) error {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "contact storage failure",
			"operation", op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return storageFailure(err)
}

// publish never fails the calling operation.
func (s *Service) publish(ctx context.Context, action events.Action, c *models.Contact) {
	if s.publisher == nil {
		return
	}
	e := events.NewEvent(action, c, requestcontext.Now(ctx))
	e.RequestID = requestcontext.RequestID(ctx)
	if err := s.publisher.Publish(ctx, e); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "contact event not published",
			"action", string(action),
			"contact_id", c.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) logMutation(ctx context.Context, msg string, c *models.Contact) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg,
			"contact_id", c.ID.String(),
			"version", c.Version,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
