package common

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewError(CodeValidation, "enter a valid name")
	}
	if len(name) > 100 {
		return NewError(CodeValidation, "name must be at most 100 characters")
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return NewError(CodeValidation, "invalid email format")
	}
	return nil
}

// ValidatePassword enforces minimum length 8 with at least one digit, one
// lowercase and one uppercase character.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return NewError(CodeValidation, "password must be at least 8 characters long")
	}
	if len(password) > 100 {
		return NewError(CodeValidation, "password is too long")
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return NewError(CodeValidation, "password needs at least 1 lowercase, 1 uppercase and 1 digit")
	}
	return nil
}

// ValidatePasswordConfirmation checks the signup/change-password pair.
func ValidatePasswordConfirmation(password, confirmation string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirmation {
		return NewError(CodeValidation, "passwords have to match")
	}
	return nil
}
