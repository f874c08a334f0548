package models

import "time"

// Patch carries caller-supplied field changes. A nil pointer leaves the
// field untouched; an empty string clears an optional field.
type Patch struct {
	FirstName *string
	LastName  *string
	Company   *string
	Phone     *string
	Email     *string
}

// Update is a complete modification as handed to a store: the caller's patch
// plus the fields every update forces.
type Update struct {
	Patch
	ModifiedDate     time.Time
	VersionIncrement int
}

// NewUpdate applies the update rule: every update stamps ModifiedDate with now
// and bumps Version by one, whichever fields the patch touches.
func NewUpdate(p Patch, now time.Time) Update {
	return Update{
		Patch:            p,
		ModifiedDate:     Timestamp(now),
		VersionIncrement: 1,
	}
}

// Apply mutates c in place. Stores without server-side update operators use
// it to keep their semantics identical to the document store.
func (c *Contact) Apply(u Update) {
	if u.FirstName != nil {
		c.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		c.LastName = *u.LastName
	}
	if u.Company != nil {
		c.Company = *u.Company
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Email != nil {
		c.Email = *u.Email
	}

	modified := u.ModifiedDate
	if modified.Before(c.CreatedDate) {
		modified = c.CreatedDate
	}
	c.ModifiedDate = &modified
	c.Version += u.VersionIncrement
}
