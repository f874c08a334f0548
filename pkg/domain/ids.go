// Package domain holds identifier types shared across layers.
package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	dErrors "crm/pkg/domain-errors"
)

// ContactID identifies a contact record. It has the shape of a document-store
// ObjectID (12 bytes, rendered as 24 hex characters) regardless of which store
// backend holds the record.
type ContactID primitive.ObjectID

// NilContactID is the zero identifier.
var NilContactID = ContactID(primitive.NilObjectID)

// NewContactID allocates a fresh identifier.
func NewContactID() ContactID {
	return ContactID(primitive.NewObjectID())
}

// ParseContactID checks the identifier shape only; it says nothing about
// whether a record exists.
func ParseContactID(s string) (ContactID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return NilContactID, dErrors.New(dErrors.CodeInvalidInput, "The provided contact ID is not valid").
			WithTitle("Invalid contact ID")
	}
	return ContactID(oid), nil
}

// IsContactID reports whether s is a well-formed contact identifier.
func IsContactID(s string) bool {
	_, err := ParseContactID(s)
	return err == nil
}

func (c ContactID) ObjectID() primitive.ObjectID {
	return primitive.ObjectID(c)
}

func (c ContactID) String() string {
	return primitive.ObjectID(c).Hex()
}

func (c ContactID) IsNil() bool {
	return c == NilContactID
}

func (c ContactID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ContactID) UnmarshalText(b []byte) error {
	parsed, err := ParseContactID(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
