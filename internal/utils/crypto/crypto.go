package crypto

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	reUpper = regexp.MustCompile(`[A-Z]`)
	reLower = regexp.MustCompile(`[a-z]`)
	reDigit = regexp.MustCompile(`[0-9]`)

	// ErrPasswordStrength describes the rule enforced by IsStrong.
	ErrPasswordStrength = errors.New(`password must be at least 8 characters long, contain an uppercase letter, a lowercase letter and a digit, and must not contain "password"`)
)

// MinPasswordLength is the shortest password IsStrong accepts.
const MinPasswordLength = 8

// HashPassword hashes a password using bcrypt with the given cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsStrong reports whether password is acceptable for an account:
// ≥8 chars, 1 upper, 1 lower, 1 digit, and not containing the word "password".
func IsStrong(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return false
	}

	return reUpper.MatchString(password) &&
		reLower.MatchString(password) &&
		reDigit.MatchString(password)
}
