package models

import (
	"time"

	id "crm/pkg/domain"
)

// Contact is the persisted contact record.
//
// Invariants:
//   - FirstName and LastName are always present and valid
//   - Company, Phone and Email are either empty or valid
//   - ID and CreatedDate never change after creation
//   - Version starts at 0 and grows by exactly 1 per update
//   - ModifiedDate is nil until the first update, then >= CreatedDate
type Contact struct {
	ID           id.ContactID `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Company      string       `json:"company,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Email        string       `json:"email,omitempty"`
	CreatedDate  time.Time    `json:"createdDate"`
	ModifiedDate *time.Time   `json:"modifiedDate,omitempty"`
	Version      int          `json:"version"`
}

// NewContact builds a record for insertion. Callers validate fields first;
// the store assigns the ID.
func NewContact(req *CreateContactRequest, now time.Time) *Contact {
	return &Contact{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Company:     req.Company,
		Phone:       string(req.Phone),
		Email:       req.Email,
		CreatedDate: Timestamp(now),
		Version:     0,
	}
}

// Timestamp normalizes t to UTC millisecond precision, the resolution every
// store backend keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
