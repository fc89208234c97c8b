package utils

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether the string looks like an email address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
