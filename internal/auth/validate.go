package auth

import (
	"strings"

	"equion/internal/apperr"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// ValidateUsername enforces spec §3's username shape: length and charset.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen {
		return apperr.ErrUsernameTooShort
	}
	for _, r := range username {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-'
		if !ok {
			return apperr.ErrUsernameCharset
		}
	}
	return nil
}

// ValidatePassword enforces spec §4.2's minimum password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperr.ErrPasswordTooShort
	}
	return nil
}

// ValidateDisplayName enforces spec §4.2's "non-empty after trim" rule.
func ValidateDisplayName(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return apperr.ErrDisplayNameEmpty
	}
	return nil
}
