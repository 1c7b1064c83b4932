package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^[0-9]{10,11}$`)
	nonDigit        = regexp.MustCompile(`\D`)
)

// DigitsOnly strips everything but ASCII digits
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// ValidEmail reports whether email looks like local@domain.tld
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone reports whether phone holds 10 or 11 digits once separators are dropped
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(DigitsOnly(phone))
}

// ValidateUsername requires at least 3 letters, digits or underscores
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may only contain letters, digits and underscores")
	}
	return nil
}

// ValidateName requires a trimmed name of at least minLen characters
func ValidateName(name string, minLen int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) < minLen {
		return fmt.Errorf("name must be at least %d characters long", minLen)
	}
	return nil
}

// ValidatePassword requires minLength characters with an upper case letter, a lower case
// letter and a digit. Only letters, digits and @$!%*?& are accepted.
func ValidatePassword(password string, minLength int) error {
	if minLength == 0 {
		minLength = 8
	}

	if len(password) < minLength {
		return fmt.Errorf("password must be at least %d characters long", minLength)
	}

	// Prevent DoS via extremely long passwords
	if len(password) > 128 {
		return fmt.Errorf("password must be at most 128 characters long")
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("@$!%*?&", r):
		default:
			return fmt.Errorf("password contains an unsupported character %q", r)
		}
	}

	if !hasLower || !hasUpper || !hasDigit {
		return fmt.Errorf("password must contain upper case, lower case and a digit")
	}

	return nil
}

// EstimatePasswordStrength returns a simple strength estimate (0-4)
func EstimatePasswordStrength(password string) int {
	score := 0

	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}

	hasLower, hasUpper, hasDigit, hasSpecial := false, false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	charTypes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSpecial} {
		if ok {
			charTypes++
		}
	}

	if charTypes >= 3 {
		score++
	}
	if charTypes >= 4 {
		score++
	}

	return score
}

// StrengthLabel maps a strength score to the label the registration form shows
func StrengthLabel(score int) string {
	switch {
	case score <= 1:
		return "weak"
	case score == 2:
		return "medium"
	}
	return "strong"
}
