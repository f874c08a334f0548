package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"crm/internal/contact/events"
	"crm/internal/contact/models"
	"crm/internal/contact/validation"
	"crm/pkg/platform/sentinel"
	"crm/pkg/requestcontext"
)

// Create validates req and persists a new contact. First and last name must
// be non-empty; optional fields are validated only when non-empty. The first
// failing field wins.
func (s *Service) Create(ctx context.Context, req *models.CreateContactRequest) (_ *models.Contact, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Create")
	defer func() { s.finish(span, "create", start, err) }()

	if err := validateCreate(req); err != nil {
		return nil, s.rejected(ctx, "create", err)
	}

	created, err := s.store.Insert(ctx, models.NewContact(req, requestcontext.Now(ctx)))
	if err != nil {
		return nil, s.storageError(ctx, "create", err)
	}
	span.SetAttributes(attribute.String("contact.id", created.ID.String()))

	s.logMutation(ctx, "contact created", created)
	if s.metrics != nil {
		s.metrics.IncCreated()
	}
	s.publish(ctx, events.ActionCreated, created)
	return created, nil
}

// List returns every stored contact in store order. The result is never nil.
func (s *Service) List(ctx context.Context) (_ []*models.Contact, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "List")
	defer func() { s.finish(span, "list", start, err) }()

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "list", err)
	}
	if all == nil {
		all = []*models.Contact{}
	}
	span.SetAttributes(attribute.Int("contact.count", len(all)))
	return all, nil
}

// Get returns the contact with rawID. A well-formed id with no record yields
// (nil, nil); only a malformed id is an error.
func (s *Service) Get(ctx context.Context, rawID string) (_ *models.Contact, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Get", attribute.String("contact.id", rawID))
	defer func() { s.finish(span, "get", start, err) }()

	contactID, err := s.parseID(rawID)
	if err != nil {
		return nil, s.rejected(ctx, "get", err)
	}

	c, err := s.store.FindByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, s.storageError(ctx, "get", err)
	}
	return c, nil
}

// Update validates every present field, then applies the patch with the
// forced update rule: modifiedDate is stamped and version bumped by one. Field
// validation runs before the existence check.
func (s *Service) Update(ctx context.Context, rawID string, req *models.UpdateContactRequest) (_ *models.Contact, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Update", attribute.String("contact.id", rawID))
	defer func() { s.finish(span, "update", start, err) }()

	contactID, err := s.parseID(rawID)
	if err != nil {
		return nil, s.rejected(ctx, "update", err)
	}
	if err := validateUpdate(req); err != nil {
		return nil, s.rejected(ctx, "update", err)
	}

	u := models.NewUpdate(req.Patch(), requestcontext.Now(ctx))
	updated, err := s.store.UpdateByID(ctx, contactID, u)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notFound()
		}
		return nil, s.storageError(ctx, "update", err)
	}

	s.logMutation(ctx, "contact updated", updated)
	if s.metrics != nil {
		s.metrics.IncUpdated()
	}
	s.publish(ctx, events.ActionUpdated, updated)
	return updated, nil
}

// Delete removes the contact with rawID. Deleting an absent record, including
// one already deleted, is NotFound.
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Delete", attribute.String("contact.id", rawID))
	defer func() { s.finish(span, "delete", start, err) }()

	contactID, err := s.parseID(rawID)
	if err != nil {
		return s.rejected(ctx, "delete", err)
	}

	existing, err := s.store.FindByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return notFound()
		}
		return s.storageError(ctx, "delete", err)
	}

	deleted, err := s.store.DeleteByID(ctx, contactID)
	if err != nil {
		return s.storageError(ctx, "delete", err)
	}
	if !deleted {
		// removed by a concurrent request between lookup and delete
		return notFound()
	}

	s.logMutation(ctx, "contact deleted", existing)
	if s.metrics != nil {
		s.metrics.IncDeleted()
	}
	s.publish(ctx, events.ActionDeleted, existing)
	return nil
}

func validateCreate(req *models.CreateContactRequest) error {
	if req == nil || req.FirstName == "" || req.LastName == "" {
		return validation.MissingRequired()
	}
	if !validation.IsValidFirstName(req.FirstName) {
		return validation.InvalidField(validation.FieldFirstName)
	}
	if !validation.IsValidLastName(req.LastName) {
		return validation.InvalidField(validation.FieldLastName)
	}
	return validateOptional(req.Company, string(req.Phone), req.Email)
}

// validateUpdate checks names whenever present, even when empty, and the
// optional fields only when present and non-empty.
func validateUpdate(req *models.UpdateContactRequest) error {
	if req == nil {
		return nil
	}
	if req.FirstName != nil && !validation.IsValidFirstName(*req.FirstName) {
		return validation.InvalidField(validation.FieldFirstName)
	}
	if req.LastName != nil && !validation.IsValidLastName(*req.LastName) {
		return validation.InvalidField(validation.FieldLastName)
	}
	var company, phone, email string
	if req.Company != nil {
		company = *req.Company
	}
	if req.Phone != nil {
		phone = string(*req.Phone)
	}
	if req.Email != nil {
		email = *req.Email
	}
	return validateOptional(company, phone, email)
}

func validateOptional(company, phone, email string) error {
	if company != "" && !validation.IsValidCompany(company) {
		return validation.InvalidField(validation.FieldCompany)
	}
	if phone != "" && !validation.IsValidPhone(phone) {
		return validation.InvalidField(validation.FieldPhone)
	}
	if email != "" && !validation.IsValidEmail(email) {
		return validation.InvalidField(validation.FieldEmail)
	}
	return nil
}
