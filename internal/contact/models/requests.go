package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CreateContactRequest is the body of POST /contact.
type CreateContactRequest struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Company   string      `json:"company"`
	Phone     PhoneNumber `json:"phone"`
	Email     string      `json:"email"`
}

// UpdateContactRequest is the body of PUT /contact/{contactId}. Absent and
// null members decode to nil. Server-owned members (id, dates, version) are
// not decoded at all.
type UpdateContactRequest struct {
	FirstName *string      `json:"firstName"`
	LastName  *string      `json:"lastName"`
	Company   *string      `json:"company"`
	Phone     *PhoneNumber `json:"phone"`
	Email     *string      `json:"email"`
}

// Patch converts the request into store-level field changes.
func (r *UpdateContactRequest) Patch() Patch {
	p := Patch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Company:   r.Company,
		Email:     r.Email,
	}
	if r.Phone != nil {
		phone := string(*r.Phone)
		p.Phone = &phone
	}
	return p
}

// PhoneNumber is raw phone input. It decodes from a JSON string as-is or from
// a JSON number as its decimal text. The number 0 decodes to "", which the
// service treats like an absent value.
type PhoneNumber string

func (p *PhoneNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PhoneNumber(s)
		return nil
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("phone must be a string or number: %w", err)
	}
	*p = PhoneNumber(FormatPhoneNumber(f))
	return nil
}

// FormatPhoneNumber renders a numeric phone as decimal text. Zero renders as
// "", the same as an absent phone.
func FormatPhoneNumber(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
