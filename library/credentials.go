package library

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

// ValidateCredentials checks the email format and the password rules:
// at least 8 characters with a digit and an uppercase letter.
func ValidateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("%q: %w", email, ErrInvalidEmail)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("must be at least %d characters long: %w", minPasswordLength, ErrWeakPassword)
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return fmt.Errorf("must contain at least one digit: %w", ErrWeakPassword)
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return fmt.Errorf("must contain at least one uppercase letter: %w", ErrWeakPassword)
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a password with a bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
