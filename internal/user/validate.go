package user

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s has a recognized email shape. Login uses this to
// decide whether a login ID should be resolved as an email or a username.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func validateRegistration(name, email, username, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if name == "" {
		return fmt.Errorf("%w: name is missing", ErrValidation)
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: name is too long", ErrValidation)
	}
	if email == "" {
		return fmt.Errorf("%w: email is missing", ErrValidation)
	}
	if !IsEmail(email) {
		return fmt.Errorf("%w: email format is incorrect", ErrValidation)
	}
	if username == "" {
		return fmt.Errorf("%w: username is missing", ErrValidation)
	}
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username length should be 3-50", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is missing", ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password should be at least 6 chars", ErrValidation)
	}
	return nil
}
