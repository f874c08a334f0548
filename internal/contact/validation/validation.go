// Package validation holds the field predicates for contact records. Each
// predicate is pure: it accepts or rejects a raw value and never fails.
//
// The patterns are ECMAScript regular expressions evaluated with regexp2;
// they use lookahead, which RE2 lacks.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

const (
	MaxFirstNameLength = 26
	MaxLastNameLength  = 38
	MaxCompanyLength   = 60
	PhoneDigits        = 10
	MaxEmailLength     = 320
)

var (
	// Leading letter, then letters, space, apostrophe, hyphen; no two of
	// space/apostrophe/hyphen in a row.
	personNamePattern = regexp2.MustCompile(`^[a-zA-Z](?!.*[ '-]{2,})[a-zA-Z' -]*$`, regexp2.ECMAScript)

	// In the body class ` -@` is the range 0x20-0x40, so digits and most
	// ASCII punctuation are allowed. In the lookahead class `[ '-@]` the range
	// is `'`-`@` (0x27-0x40) plus space: two of those in a row are rejected,
	// while `!"#$%&` are not counted.
	companyPattern = regexp2.MustCompile(`^[a-zA-Z0-9](?!.*([ '-@]){2})[a-zA-Z0-9' -@]*[a-zA-Z0-9]$`, regexp2.ECMAScript)

	phonePattern = regexp2.MustCompile(`^\d{10}$`, regexp2.ECMAScript)

	// The first domain label may be a single character; later labels follow
	// the same alphanumeric-bounded shape.
	emailPattern = regexp2.MustCompile(
		`^(?!.*(?:[\W_]{2,}))[a-zA-Z0-9](?:[a-zA-Z0-9._+-]{0,62}[a-zA-Z0-9])?`+
			`@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,253}[a-zA-Z0-9])?\.(?:[a-zA-Z0-9-]{0,253}[a-zA-Z0-9]\.)*[a-zA-Z]{2,63}$`,
		regexp2.ECMAScript)
)

// match runs re against s with JavaScript end-of-input semantics: regexp2's $
// also matches before a final newline, JavaScript's does not.
func match(re *regexp2.Regexp, s string) bool {
	if strings.HasSuffix(s, "\n") {
		return false
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}

func lengthWithin(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && n <= hi
}

// IsValidFirstName accepts 1-26 characters matching the personal name shape.
func IsValidFirstName(s string) bool {
	if !lengthWithin(s, 1, MaxFirstNameLength) {
		return false
	}
	return match(personNamePattern, s)
}

// IsValidLastName accepts 1-38 characters matching the personal name shape
// and rejects all-whitespace values.
func IsValidLastName(s string) bool {
	if !lengthWithin(s, 1, MaxLastNameLength) || strings.TrimSpace(s) == "" {
		return false
	}
	return match(personNamePattern, s)
}

// IsValidCompany accepts 1-60 characters that start and end alphanumeric.
// The pattern itself needs at least two characters.
func IsValidCompany(s string) bool {
	if !lengthWithin(s, 1, MaxCompanyLength) {
		return false
	}
	return match(companyPattern, s)
}

// IsValidPhone accepts exactly ten decimal digits whose first and fourth
// digits are neither 0 nor 1 (area code and exchange rule).
func IsValidPhone(s string) bool {
	if len(s) > 0 && (s[0] == '0' || s[0] == '1') {
		return false
	}
	if len(s) > 3 && (s[3] == '0' || s[3] == '1') {
		return false
	}
	return match(phonePattern, s)
}

// IsValidEmail accepts a local@domain.tld address of at most 320 characters
// with no two consecutive non-alphanumeric characters.
func IsValidEmail(s string) bool {
	return match(emailPattern, s) && utf8.RuneCountInString(s) <= MaxEmailLength
}
