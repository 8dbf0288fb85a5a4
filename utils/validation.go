// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var milkIDPattern = regexp.MustCompile(`^\d{6}$`)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsMilkID reports whether s has the shape of a generated loyalty id.
func IsMilkID(s string) bool {
	return milkIDPattern.MatchString(s)
}
