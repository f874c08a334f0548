// Package store provides the contact persistence backends. Every backend
// assigns ObjectID-shaped identifiers, returns sentinel.ErrNotFound for
// missing documents, and applies models.Update atomically per document.
package store

import (
	"fmt"

	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

// ValidID is the identifier shape check shared by all backends.
func ValidID(raw string) bool {
	return id.IsContactID(raw)
}

// unavailable marks a failed health probe so callers can match
// sentinel.ErrUnavailable while keeping the driver's message.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
}
