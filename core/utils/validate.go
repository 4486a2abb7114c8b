package utils

import (
	"errors"
	"regexp"
)

var (
	identityRe      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	cutoffRe        = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	phoneRe         = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	secretMaxLength = 128
	whitespaceRe    = regexp.MustCompile(`\s`)
)

// ValidateIdentity checks the staff account identity, which is always an
// email address in Movura.
func ValidateIdentity(s string) error {
	if len(s) > 255 || !identityRe.MatchString(s) {
		return errors.New("invalid identity")
	}
	return nil
}

func ValidateSecret(s string, minLen int) error {
	if minLen <= 0 {
		minLen = 8
	}
	if len(s) < minLen {
		return errors.New("secret too short")
	}
	if len(s) > secretMaxLength {
		return errors.New("secret too long (max 128 chars)")
	}
	if whitespaceRe.MatchString(s) {
		return errors.New("secret must not contain spaces")
	}
	return nil
}

// ValidateCutoff checks the daily tariff cutoff, HH:MM 24h clock.
func ValidateCutoff(s string) error {
	if !cutoffRe.MatchString(s) {
		return errors.New("cutoff must be HH:MM")
	}
	return nil
}

func ValidatePhone(s string) error {
	if !phoneRe.MatchString(s) {
		return errors.New("invalid phone")
	}
	return nil
}
