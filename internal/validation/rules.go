// Package validation holds the input validators for user-facing fields.
// All validators are pure: no I/O, no state beyond precompiled patterns.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrPhoneInvalid  = errors.New("invalid phone number")

	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("invalid email entered")

	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("invalid username has been entered")

	ErrNationalIDRequired = errors.New("ID number is required")
	ErrNationalIDInvalid  = errors.New("invalid ID number format entered")
)

// Compiled patterns, cached at package level.
var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-z]{2,3}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{2,19}$`)
	// Two-digit district, 6-7 digit serial, check letter, two-digit district,
	// with one consistent separator (dash, space or none) throughout.
	nationalIDPattern = regexp.MustCompile(`^[0-9]{2}([-\s]?)[0-9]{6,7}([-\s]?)[a-zA-Z]([-\s]?)[0-9]{2}$`)
	// E.164-ish: optional +, leading nonzero digit, 8 to 14 more digits.
	phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{8,14}$`)
)

// DefaultPhoneRegion is assumed when a phone number has no country prefix.
const DefaultPhoneRegion = "263" // Zimbabwe

// NormalizePhone strips formatting from a phone number and returns it as
// digits only with the country code applied (no leading +). A number starting
// with 0 has the default region prefix substituted for the zero.
func NormalizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrPhoneRequired
	}
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = DefaultPhoneRegion + digits[1:]
	}
	if !phonePattern.MatchString(digits) {
		return "", ErrPhoneInvalid
	}
	return strings.TrimPrefix(digits, "+"), nil
}

// ValidateEmail reports whether the address is acceptable.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateUsername accepts 3-20 alphanumerics starting with a letter.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrUsernameRequired
	}
	if !usernamePattern.MatchString(name) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidateNationalID checks the national registration number format. The same
// separator must be used between all groups.
func ValidateNationalID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNationalIDRequired
	}
	m := nationalIDPattern.FindStringSubmatch(id)
	if m == nil {
		return ErrNationalIDInvalid
	}
	if m[1] != m[2] || m[2] != m[3] {
		return ErrNationalIDInvalid
	}
	return nil
}
