package validation

import dErrors "crm/pkg/domain-errors"

// Field names a validated contact attribute as it appears on the wire.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldCompany   Field = "company"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
)

const nameHint = "You must enter a valid name (a-Z, space, -, ')"

var fieldMessages = map[Field][2]string{
	FieldFirstName: {"Invalid first name", nameHint},
	FieldLastName:  {"Invalid last name", nameHint},
	FieldCompany:   {"Invalid company name", "You must enter a valid name"},
	FieldPhone:     {"Invalid phone number", "You must enter a valid 10-digit US phone number"},
	FieldEmail:     {"Invalid email address", "You must enter a valid email address"},
}

// InvalidField builds the error reported when a present field fails its
// predicate.
func InvalidField(f Field) error {
	msg := fieldMessages[f]
	return dErrors.New(dErrors.CodeValidation, msg[1]).
		WithTitle(msg[0]).
		WithField(string(f))
}

// MissingRequired builds the error reported when first or last name is absent.
func MissingRequired() error {
	return dErrors.New(dErrors.CodeMissingField, "Both first and last name are required").
		WithTitle("Missing required fields")
}
