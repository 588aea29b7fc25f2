// utils/validation.go
package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	// Allows + prefix followed by 2-15 digits
	return phoneRegex.MatchString(cleaned)
}

// NormEmail lower-cases and trims an address and reports whether it parses.
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return e, false
	}
	return e, true
}

// NormZip upper-cases a postal code and strips inner whitespace.
func NormZip(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
